package httputil_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beemafrica/beem-go/internal/httputil"
	"github.com/beemafrica/beem-go/internal/testutil"
)

func TestReadJSONKeepsRawBodyAndNumbers(t *testing.T) {
	body := `{"transaction_id":"T1","amount":1000.50}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	var m map[string]any
	raw, ok := httputil.ReadJSON(w, r, &m)

	testutil.True(t, ok)
	testutil.Equal(t, body, string(raw))
	n, isNumber := m["amount"].(json.Number)
	testutil.True(t, isNumber)
	testutil.Equal(t, "1000.50", n.String())
}

func TestDecodeJSONInvalidBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	var m map[string]any
	testutil.False(t, httputil.DecodeJSON(w, r, &m))
	testutil.Equal(t, http.StatusBadRequest, w.Code)

	var resp httputil.ErrorResponse
	testutil.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	testutil.Equal(t, http.StatusBadRequest, resp.Code)
	testutil.Equal(t, "invalid JSON body", resp.Message)
}

func TestReadJSONBodyTooLarge(t *testing.T) {
	big := `{"x":"` + strings.Repeat("a", httputil.MaxBodySize) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	w := httptest.NewRecorder()

	var m map[string]any
	_, ok := httputil.ReadJSON(w, r, &m)
	testutil.False(t, ok)
	testutil.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestWriteFieldError(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.WriteFieldError(w, http.StatusUnprocessableEntity, "validation failed",
		"transaction_id", "required", "transaction_id is required")

	testutil.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp httputil.ErrorResponse
	testutil.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	testutil.Equal(t, "validation failed", resp.Message)
	field, ok := resp.Data["transaction_id"].(map[string]any)
	testutil.True(t, ok)
	testutil.Equal(t, "required", field["code"])
}
