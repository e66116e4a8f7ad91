package cli

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	if buildVersion != "1.2.3" {
		t.Fatalf("expected 1.2.3, got %q", buildVersion)
	}
	if buildCommit != "abc123" {
		t.Fatalf("expected abc123, got %q", buildCommit)
	}
	if buildDate != "2026-01-01" {
		t.Fatalf("expected 2026-01-01, got %q", buildDate)
	}
	SetVersion("dev", "none", "unknown")
}

// resetFlags puts the persistent flags back to defaults between tests.
func resetFlags() {
	rootCmd.PersistentFlags().Set("json", "false")
	rootCmd.PersistentFlags().Set("config", "")
	rootCmd.PersistentFlags().Set("env-file", ".env")
	// Slice flags append once changed, so clear --to between runs.
	if f := smsSendCmd.Flags().Lookup("to"); f != nil {
		f.Value.(pflag.SliceValue).Replace(nil)
		f.Changed = false
	}
}

// captureStdout captures stdout output from the given function.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	r.Close()
	return string(out)
}

// run executes the root command with args and returns stdout and the error.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)
	var err error
	out := captureStdout(t, func() {
		rootCmd.SetArgs(args)
		err = rootCmd.Execute()
	})
	return out, err
}

// withCredentials sets credentials and a default sender through the environment.
func withCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("BEEM_API_KEY", "key")
	t.Setenv("BEEM_SECRET_KEY", "s3cr3t")
	t.Setenv("BEEM_SMS_SENDER_ID", "SHOP")
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beem.toml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeBeem replies with body to every request and records what it saw.
func fakeBeem(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		mu.Lock()
		seen = append(seen, rec)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestVersionCommand(t *testing.T) {
	SetVersion("0.1.0", "deadbeef", "2026-02-07")
	defer SetVersion("dev", "none", "unknown")

	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "0.1.0") || !strings.Contains(out, "deadbeef") {
		t.Fatalf("expected version and commit in output, got %q", out)
	}
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := run(t, "version", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if v["version"] != "dev" {
		t.Fatalf("expected dev version, got %q", v["version"])
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"serve", "sms", "otp", "airtime", "disburse", "checkout", "contacts",
		"ussd", "collection", "transactions", "config", "version"}
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestSMSSubcommands(t *testing.T) {
	var names []string
	for _, c := range smsCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"send", "balance", "segments", "reports", "sender-names", "templates", "international"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("sms %s not registered (have %v)", want, names)
		}
	}
}

func TestConfigCommandMasksSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beem.toml")
	content := "[beem]\napi_key = \"key\"\nsecret_key = \"very-secret\"\n\n[webhook]\nsecret = \"hook-secret\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "config", "--config", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "very-secret") || strings.Contains(out, "hook-secret") {
		t.Fatalf("secrets leaked in output:\n%s", out)
	}
	if !strings.Contains(out, "********") {
		t.Fatalf("expected masked secret, got:\n%s", out)
	}
	var parsed map[string]any
	if err := toml.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("config output is not valid TOML: %v", err)
	}
}

func TestConfigSetThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beem.toml")

	if _, err := run(t, "config", "set", "sms.sender_id", "SHOP", "--config", path); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := run(t, "config", "get", "sms.sender_id", "--config", path)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != "SHOP" {
		t.Fatalf("expected SHOP, got %q", out)
	}
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beem.toml")
	_, err := run(t, "config", "set", "nope.key", "x", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "unknown configuration key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beem.toml")

	if _, err := run(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file written: %v", err)
	}
	if _, err := run(t, "config", "init", "--config", path); err == nil {
		t.Fatal("expected error when file exists")
	}
}

func TestSMSSegments(t *testing.T) {
	out, err := run(t, "sms", "segments", strings.Repeat("a", 161))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("expected 2 segments, got %q", out)
	}
}

func TestSMSSendRequiresCredentials(t *testing.T) {
	t.Setenv("BEEM_API_KEY", "")
	t.Setenv("BEEM_SECRET_KEY", "")
	_, err := run(t, "sms", "send", "--to", "255712345678", "--message", "hi", "--config", emptyConfig(t), "--env-file", "")
	if err == nil || !strings.Contains(err.Error(), "beem.api_key") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestSMSSendJSON(t *testing.T) {
	withCredentials(t)
	srv, seen := fakeBeem(t, http.StatusOK,
		`{"successful":true,"request_id":77,"code":100,"message":"Message Submitted Successfully","valid":1,"invalid":0,"duplicates":0}`)
	t.Setenv("BEEM_SMS_URL", srv.URL)

	out, err := run(t, "sms", "send", "--to", "+255 712 345 678", "--message", "hi", "--json", "--config", emptyConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res["RequestID"] != "77" {
		t.Fatalf("expected request id 77, got %v", res["RequestID"])
	}

	if len(*seen) != 1 {
		t.Fatalf("expected one request, got %d", len(*seen))
	}
	req := (*seen)[0]
	if req.Path != "/v1/send" {
		t.Fatalf("expected /v1/send, got %s", req.Path)
	}
	if req.Body["source_addr"] != "SHOP" {
		t.Fatalf("expected default sender SHOP, got %v", req.Body["source_addr"])
	}
	recipients, _ := req.Body["recipients"].([]any)
	if len(recipients) != 1 {
		t.Fatalf("expected one recipient, got %v", req.Body["recipients"])
	}
	if dest := recipients[0].(map[string]any)["dest_addr"]; dest != "255712345678" {
		t.Fatalf("expected normalised msisdn, got %v", dest)
	}
}

func TestSMSSendSurfacesAPIError(t *testing.T) {
	withCredentials(t)
	srv, _ := fakeBeem(t, http.StatusUnauthorized, `{"code":120,"message":"Invalid Authentication Parameters"}`)
	t.Setenv("BEEM_SMS_URL", srv.URL)

	_, err := run(t, "sms", "send", "--to", "255712345678", "--message", "hi", "--config", emptyConfig(t))
	if err == nil || !strings.Contains(err.Error(), "Invalid Authentication Parameters") {
		t.Fatalf("expected API error message, got %v", err)
	}
}

func TestOTPVerifyRejectedPin(t *testing.T) {
	withCredentials(t)
	srv, seen := fakeBeem(t, http.StatusOK, `{"data":{"message":{"code":114,"message":"Incorrect Pin"}}}`)
	t.Setenv("BEEM_OTP_URL", srv.URL)

	out, err := run(t, "otp", "verify", "pin-1", "1234", "--config", emptyConfig(t))
	if err == nil || !strings.Contains(err.Error(), "114") {
		t.Fatalf("expected rejected pin error, got %v", err)
	}
	if !strings.Contains(out, "Incorrect Pin") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if (*seen)[0].Body["pinId"] != "pin-1" {
		t.Fatalf("expected pinId in body, got %v", (*seen)[0].Body)
	}
}

func TestSMSSendRoutesForeignNumbersInternationally(t *testing.T) {
	withCredentials(t)
	srv, seen := fakeBeem(t, http.StatusOK, `{"successful":true,"request_id":5,"message_id":"m-1","status":"sent","message":"ok"}`)
	t.Setenv("BEEM_SMS_URL", srv.URL)
	t.Setenv("BEEM_INTERNATIONAL_SMS_URL", srv.URL)

	out, err := run(t, "sms", "send", "--to", "0712345678,+254712345678", "--message", "hi", "--json", "--config", emptyConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if _, ok := res["international"]; !ok {
		t.Fatalf("expected international results, got %q", out)
	}

	if len(*seen) != 2 {
		t.Fatalf("expected bulk + international request, got %d", len(*seen))
	}
	bulk, intl := (*seen)[0], (*seen)[1]
	if bulk.Path != "/v1/send" || intl.Path != "/api/sms/send" {
		t.Fatalf("unexpected paths %s, %s", bulk.Path, intl.Path)
	}
	recipients, _ := bulk.Body["recipients"].([]any)
	if len(recipients) != 1 {
		t.Fatalf("bulk send should carry only the local number, got %v", bulk.Body["recipients"])
	}
	if intl.Body["to"] != "254712345678" {
		t.Fatalf("expected Kenyan number on international send, got %v", intl.Body["to"])
	}
}

func TestCheckoutURLMakesNoRequest(t *testing.T) {
	withCredentials(t)
	srv, seen := fakeBeem(t, http.StatusOK, `{}`)
	t.Setenv("BEEM_CHECKOUT_URL", srv.URL)

	out, err := run(t, "checkout", "url", "2500", "ORDER-1", "--transaction-id", "tx-1", "--json", "--config", emptyConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var r map[string]string
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !strings.HasPrefix(r["url"], srv.URL+"/v1/checkout?") {
		t.Fatalf("unexpected url %q", r["url"])
	}
	if !strings.Contains(r["url"], "reference_number=ORDER-1") {
		t.Fatalf("expected reference in url, got %q", r["url"])
	}
	if _, ok := r["authorization"]; ok {
		t.Fatalf("authorization must be opt-in, got %q", out)
	}
	if len(*seen) != 0 {
		t.Fatalf("checkout url must not call Beem, saw %d requests", len(*seen))
	}
}

func TestCheckoutURLShowAuth(t *testing.T) {
	withCredentials(t)
	t.Cleanup(func() { checkoutURLCmd.Flags().Set("show-auth", "false") })

	out, err := run(t, "checkout", "url", "2500", "ORDER-1", "--show-auth", "--json", "--config", emptyConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var r map[string]string
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !strings.HasPrefix(r["authorization"], "Basic ") {
		t.Fatalf("expected Basic authorization, got %q", out)
	}
}

func TestAirtimeTransferRejectsBadAmount(t *testing.T) {
	_, err := run(t, "airtime", "transfer", "255712345678", "ten")
	if err == nil || !strings.Contains(err.Error(), "invalid amount") {
		t.Fatalf("expected invalid amount error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("BEEM_SMS_SENDER_ID=FROMENV\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BEEM_SMS_SENDER_ID", "placeholder")
	os.Unsetenv("BEEM_SMS_SENDER_ID")

	out, err := run(t, "config", "get", "sms.sender_id", "--env-file", envPath, "--config", emptyConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "FROMENV" {
		t.Fatalf("expected value from .env, got %q", out)
	}
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("env-file", filepath.Join(t.TempDir(), "missing.env"), "")
	if err := loadDotEnv(cmd, nil); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}

func TestParseSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseSlogLevel(in); got != want {
			t.Errorf("parseSlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestServeFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("database-url", "", "")
	cmd.Flags().Int("port", 0, "")
	cmd.Flags().String("host", "", "")
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().Set("port", "9000")
	cmd.Flags().Set("database-url", "postgres://localhost/db")

	flags := serveFlags(cmd)
	if flags["port"] != "9000" || flags["database-url"] != "postgres://localhost/db" {
		t.Fatalf("unexpected flags %v", flags)
	}
	if _, ok := flags["host"]; ok {
		t.Fatal("unset flags should be omitted")
	}
}

func TestTransactionsRequiresDatabaseURL(t *testing.T) {
	t.Setenv("BEEM_DATABASE_URL", "")
	_, err := run(t, "transactions", "list", "--config", emptyConfig(t))
	if err == nil || !strings.Contains(err.Error(), "database.url is required") {
		t.Fatalf("expected database url error, got %v", err)
	}
}

func TestTransactionsListRejectsUnknownStatus(t *testing.T) {
	t.Cleanup(func() { transactionsListCmd.Flags().Set("status", "pending") })
	_, err := run(t, "transactions", "list", "--status", "weird", "--config", emptyConfig(t))
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestSMSSendDryRunNeedsNoCredentials(t *testing.T) {
	t.Setenv("BEEM_API_KEY", "")
	t.Setenv("BEEM_SECRET_KEY", "")
	t.Setenv("BEEM_SMS_SENDER_ID", "SHOP")
	t.Cleanup(func() { smsSendCmd.Flags().Set("dry-run", "false") })

	out, err := run(t, "sms", "send", "--to", "255712345678,255755123456", "--message", "hi",
		"--dry-run", "--json", "--config", emptyConfig(t), "--env-file", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res["Valid"] != float64(2) {
		t.Fatalf("expected 2 valid recipients, got %v", res["Valid"])
	}
}
