package ui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/beemafrica/beem-go/internal/apierr"
)

func TestFormatErrorBasicMessage(t *testing.T) {
	out := FormatError(errors.New("sms request failed"))
	if !strings.Contains(out, "Error:") {
		t.Error("expected 'Error:' prefix")
	}
	if !strings.Contains(out, "sms request failed") {
		t.Error("expected message in output")
	}
	if strings.Contains(out, "Try:") || strings.Contains(out, "HTTP") {
		t.Errorf("plain error should have no hints or status line, got %q", out)
	}
}

func TestFormatErrorWithHints(t *testing.T) {
	out := FormatError(errors.New("beem.api_key is required"),
		"beem config set beem.api_key <key>",
		"export BEEM_API_KEY=<key>",
	)
	if !strings.Contains(out, "Try:") {
		t.Error("expected 'Try:' section")
	}
	if !strings.Contains(out, "beem config set beem.api_key <key>") {
		t.Error("expected first hint")
	}
	if !strings.Contains(out, "export BEEM_API_KEY=<key>") {
		t.Error("expected second hint")
	}
	if !strings.Contains(out, SymbolArrow) {
		t.Error("expected arrow symbol in hints")
	}
}

func TestFormatErrorNamesAPIStatus(t *testing.T) {
	err := fmt.Errorf("sending: %w", apierr.FromAPIResponse(apierr.SMS, map[string]any{"message": "Invalid sender id"}, 400))
	out := FormatError(err)
	if !strings.Contains(out, "Invalid sender id") {
		t.Errorf("expected API message, got %q", out)
	}
	if !strings.Contains(out, "sms API answered HTTP 400") {
		t.Errorf("expected status line, got %q", out)
	}
}

func TestStepSpinnerNoSpinDone(t *testing.T) {
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, true)
	sp.Start("Connecting to database...")
	sp.Done()

	out := buf.String()
	if !strings.Contains(out, "Connecting to database...") {
		t.Errorf("expected step message, got %q", out)
	}
	if !strings.Contains(out, SymbolCheck) {
		t.Errorf("expected check symbol, got %q", out)
	}
}

func TestStepSpinnerNoSpinFail(t *testing.T) {
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, true)
	sp.Start("Migrating...")
	sp.Fail()

	if !strings.Contains(buf.String(), SymbolCross) {
		t.Errorf("expected cross symbol in fail output, got %q", buf.String())
	}
}

func TestStepSpinnerRun(t *testing.T) {
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, true)

	if err := sp.Run("Connecting...", func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	boom := errors.New("boom")
	if err := sp.Run("Migrating...", func() error { return boom }); err != boom {
		t.Fatalf("Run should return the step error, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per step, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "Connecting...") || !strings.Contains(lines[0], SymbolCheck) {
		t.Errorf("expected check on first step, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "Migrating...") || !strings.Contains(lines[1], SymbolCross) {
		t.Errorf("expected cross on second step, got %q", lines[1])
	}
}

func TestStepSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, true)
	sp.Stop()
	sp.Done()
}

func TestWriteFieldsSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteFields(&buf,
		Field{"Request ID", "42"},
		Field{"Message", ""},
		Field{"Valid", 3},
	)

	out := buf.String()
	if !strings.Contains(out, "Request ID:") || !strings.Contains(out, "42") {
		t.Errorf("expected request id line, got %q", out)
	}
	if strings.Contains(out, "Message:") {
		t.Errorf("empty field should be skipped, got %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected 2 lines, got %q", out)
	}
}

func TestStatus(t *testing.T) {
	if !strings.Contains(Status(true, "valid pin"), SymbolCheck) {
		t.Error("expected check for ok status")
	}
	if !strings.Contains(Status(false, "incorrect pin"), SymbolCross) {
		t.Error("expected cross for failed status")
	}
}

func TestColorEnabledRespectsNO_COLOR(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if ColorEnabled() {
		t.Error("ColorEnabled should return false when NO_COLOR is set")
	}
}

func TestForcedRendererProducesANSI(t *testing.T) {
	r := ForcedRenderer()
	if r != ForcedRenderer() {
		t.Error("ForcedRenderer should return the same instance")
	}
	out := r.NewStyle().Bold(true).Render("test")
	if !strings.Contains(out, "\x1b[") {
		t.Error("forced renderer should produce ANSI escape codes")
	}
}
