// internal/app/system/jsonutil/jsonutil_test.go
package jsonutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Data(rec, map[string]int{"total_leads": 7})

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var body struct {
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Data["total_leads"] != 7 {
		t.Fatalf("data = %v", body.Data)
	}
}

func TestErrorMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Conflict(rec, "A blog with this slug already exists for this domain.")

	if rec.Code != 409 {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["message"] == "" {
		t.Fatalf("missing message key in %v", body)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("unexpected error key in %v", body)
	}
}
