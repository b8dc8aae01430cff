// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Name     string `json:"name" validate:"required,max=10"`
	Password string `json:"password" validate:"omitempty,min=8"`
	URL      string `json:"url" validate:"omitempty,weburl"`
	Date     string `json:"date" validate:"omitempty,isodate"`
	Kind     string `json:"kind" validate:"omitempty,oneof=tech community"`
	Limit    int    `json:"limit" validate:"gte=0,lte=100"`
}

func TestValidateStruct_Valid(t *testing.T) {
	req := sampleRequest{Name: "Go", URL: "https://example.com/e/1", Date: "2026-05-01", Kind: "tech", Limit: 20}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		field   string
		tag     string
		message string
	}{
		{"required", sampleRequest{}, "name", "required", "name is required"},
		{"max string", sampleRequest{Name: strings.Repeat("x", 11)}, "name", "max", "name must be at most 10 characters"},
		{"min string", sampleRequest{Name: "a", Password: "short"}, "password", "min", "password must be at least 8 characters"},
		{"ftp url", sampleRequest{Name: "a", URL: "ftp://example.com"}, "url", "weburl", "url must be an http or https URL"},
		{"relative url", sampleRequest{Name: "a", URL: "/events/1"}, "url", "weburl", "url must be an http or https URL"},
		{"bad date", sampleRequest{Name: "a", Date: "2026-13-01"}, "date", "isodate", "date must be a date in YYYY-MM-DD format"},
		{"oneof", sampleRequest{Name: "a", Kind: "party"}, "kind", "oneof", "kind must be one of: tech community"},
		{"lte", sampleRequest{Name: "a", Limit: 101}, "limit", "lte", "limit must be less than or equal to 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(verr.Errors()) != 1 {
				t.Fatalf("got %d errors: %v", len(verr.Errors()), verr)
			}
			fe := verr.Errors()[0]
			if fe.Field() != tt.field || fe.Tag() != tt.tag || fe.Error() != tt.message {
				t.Errorf("error = %s/%s %q, want %s/%s %q", fe.Field(), fe.Tag(), fe.Error(), tt.field, tt.tag, tt.message)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&sampleRequest{}).ToAPIError()
	if single.Code != "VALIDATION_ERROR" || single.Details["field"] != "name" {
		t.Errorf("single = %+v", single)
	}

	multi := ValidateStruct(&sampleRequest{URL: "nope", Limit: -1}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("multi details = %+v", multi.Details)
	}
	if !strings.Contains(multi.Message, "name is required") || !strings.Contains(multi.Message, "; ") {
		t.Errorf("multi message = %q", multi.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty = %+v", empty)
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil || verr.Errors()[0].Field() != "unknown" {
		t.Errorf("ValidateStruct(string) = %v", verr)
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}
