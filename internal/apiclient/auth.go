package apiclient

import (
	"encoding/base64"
	"log/slog"
	"net/http"
)

// Auth attaches credentials to an outgoing request.
type Auth interface {
	Apply(req *http.Request)
}

// Credentials are a Beem API key/secret pair, sent as HTTP Basic auth.
type Credentials struct {
	APIKey    string
	SecretKey string
}

func (c Credentials) Apply(req *http.Request) {
	req.SetBasicAuth(c.APIKey, c.SecretKey)
}

// AuthorizationHeader returns the value of the Basic Authorization header.
func (c Credentials) AuthorizationHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.APIKey+":"+c.SecretKey))
}

// Empty reports whether either half of the pair is missing.
func (c Credentials) Empty() bool {
	return c.APIKey == "" || c.SecretKey == ""
}

func (c Credentials) String() string {
	return "Credentials{APIKey: " + c.APIKey + ", SecretKey: [REDACTED]}"
}

func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api_key", c.APIKey),
		slog.String("secret_key", "[REDACTED]"),
	)
}

// HeaderToken sends a static token in a named header.
type HeaderToken struct {
	Name  string
	Value string
}

func (h HeaderToken) Apply(req *http.Request) {
	req.Header.Set(h.Name, h.Value)
}

func (h HeaderToken) LogValue() slog.Value {
	return slog.GroupValue(slog.String("header", h.Name), slog.String("value", "[REDACTED]"))
}

// NoAuth sends no credentials.
type NoAuth struct{}

func (NoAuth) Apply(*http.Request) {}
