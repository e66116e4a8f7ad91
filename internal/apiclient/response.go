package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/beemafrica/beem-go/internal/apierr"
)

// Response is the raw reply to one call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Successful reports a 2xx status.
func (r *Response) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

var errTrailingData = errors.New("unexpected data after JSON value")

// Value decodes the body as a single JSON value, keeping numbers as
// json.Number. An empty body decodes to nil.
func (r *Response) Value() (any, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

var errNotObject = errors.New("response body is not a JSON object")

// JSON decodes the body as a JSON object.
func (r *Response) JSON() (map[string]any, error) {
	v, err := r.Value()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

// JSONOrEmpty decodes the body as a JSON object, treating an absent or
// undecodable body as an empty one.
func (r *Response) JSONOrEmpty() map[string]any {
	m, err := r.JSON()
	if err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// Expect returns the decoded object body of a successful reply. A non-2xx
// reply yields apierr.FromAPIResponse; a 2xx reply whose body is empty, not
// JSON, or not a non-empty object yields apierr.InvalidResponse.
func (r *Response) Expect(family apierr.Family) (map[string]any, error) {
	if !r.Successful() {
		return nil, apierr.FromAPIResponse(family, r.JSONOrEmpty(), r.StatusCode)
	}
	m, err := r.JSON()
	if err != nil {
		return nil, apierr.InvalidResponse(family, err.Error())
	}
	if len(m) == 0 {
		return nil, apierr.InvalidResponse(family, "empty response body")
	}
	return m, nil
}

// ExpectValue is Expect for list endpoints, whose body may be a bare JSON
// array. An empty array is a valid (empty) result; an absent body, JSON
// null or an empty object is not.
func (r *Response) ExpectValue(family apierr.Family) (any, error) {
	if !r.Successful() {
		return nil, apierr.FromAPIResponse(family, r.JSONOrEmpty(), r.StatusCode)
	}
	v, err := r.Value()
	if err != nil {
		return nil, apierr.InvalidResponse(family, err.Error())
	}
	switch body := v.(type) {
	case nil:
		return nil, apierr.InvalidResponse(family, "empty response body")
	case map[string]any:
		if len(body) == 0 {
			return nil, apierr.InvalidResponse(family, "empty response body")
		}
	}
	return v, nil
}
