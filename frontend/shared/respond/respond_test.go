package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestErrorWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "quantity must be at least 1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "quantity must be at least 1" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "ok", body: `{"name":"Lab 1"}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"name":"Lab 1","extra":1}`, wantErr: true},
		{name: "trailing", body: `{"name":"a"}{"name":"b"}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p payload
			err := DecodeJSON(req, &p)
			if tc.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseIDList(t *testing.T) {
	got, err := ParseIDList("3, 5,,9")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{3, 5, 9}) {
		t.Fatalf("unexpected ids: %v", got)
	}
	if _, err := ParseIDList("3,x"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestDecodeValidReportsFields(t *testing.T) {
	type payload struct {
		Username string `json:"username" validate:"required,max=8"`
		Role     string `json:"role" validate:"required,oneof=admin viewer"`
	}
	cases := []struct {
		name   string
		body   string
		fields []string
	}{
		{name: "ok", body: `{"username":"anna","role":"viewer"}`},
		{name: "missing username", body: `{"role":"viewer"}`, fields: []string{"username"}},
		{name: "bad role and long name", body: `{"username":"averylongname","role":"owner"}`, fields: []string{"role", "username"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p payload
			err := DecodeValid(req, &p)
			if len(tc.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			for _, f := range tc.fields {
				if verr.Fields[f] == "" {
					t.Fatalf("expected field %s in %v", f, verr.Fields)
				}
			}
			if len(verr.Fields) != len(tc.fields) {
				t.Fatalf("unexpected fields %v", verr.Fields)
			}
		})
	}
}

func TestBadRequestIncludesFieldDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, &ValidationError{Fields: map[string]string{"role": "role is required"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Details["role"] != "role is required" || !strings.HasPrefix(body.Error, "validation failed") {
		t.Fatalf("unexpected body %+v", body)
	}
}
