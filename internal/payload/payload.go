// Package payload reads fields out of decoded Beem JSON bodies.
//
// Every accessor is total: a missing key or a value of the wrong JSON type
// yields the zero value instead of an error, so response values can be
// built from sparse payloads.
package payload

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// String returns m[key] as a string. Numbers are formatted; booleans and
// other types yield "".
func String(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// Int returns m[key] as an int. Numeric strings are parsed; fractional
// values are truncated.
func Int(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Float returns m[key] as a float64.
func Float(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case json.Number:
		f, _ := v.Float64()
		return f
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

// Bool returns m[key] as a bool. Beem encodes flags as booleans, 0/1 or
// "true"/"false"; all three are accepted.
func Bool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case json.Number, float64, int, int64:
		return Int(m, key) != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	}
	return false
}

// Decimal returns m[key] as a decimal. Unparseable values yield zero.
func Decimal(m map[string]any, key string) decimal.Decimal {
	switch v := m[key].(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}

// Map returns m[key] when it is a JSON object, else an empty map.
func Map(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

// Strings returns the string elements of the array at m[key].
func Strings(m map[string]any, key string) []string {
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := String(map[string]any{"v": item}, "v"); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Data returns the "data" object of a Beem envelope, or m itself when there
// is no such object. Beem wraps most single-object replies as
// {"data": {...}} but not all of them.
func Data(m map[string]any) map[string]any {
	if d, ok := m["data"].(map[string]any); ok {
		return d
	}
	return m
}

// UnwrapList extracts the item list from a list endpoint body. It accepts a
// bare JSON array or an object with the array under "data". A "data" value
// that is not an array, or any other shape, yields an empty list. Non-object
// elements are skipped.
func UnwrapList(body any) []map[string]any {
	var arr []any
	switch v := body.(type) {
	case []any:
		arr = v
	case map[string]any:
		arr, _ = v["data"].([]any)
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
