// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package validation

import (
	"strings"
	"testing"
)

func TestGetValidatorSingleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

type trainRequest struct {
	NFactors        int    `validate:"min=1,max=500"`
	InteractionType string `validate:"omitempty,oneof=view click bookmark booking rating"`
	UserID          string `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		req := trainRequest{NFactors: 10, InteractionType: "click", UserID: "u1"}
		if verr := ValidateStruct(&req); verr != nil {
			t.Errorf("ValidateStruct() = %v, want nil", verr)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		req := trainRequest{NFactors: 10}
		verr := ValidateStruct(&req)
		if verr == nil {
			t.Fatal("expected validation error")
		}
		if len(verr.Errors()) != 1 {
			t.Fatalf("got %d errors, want 1: %v", len(verr.Errors()), verr)
		}
		fe := verr.Errors()[0]
		if fe.Field() != "UserID" || fe.Tag() != "required" {
			t.Errorf("failure = %s/%s, want UserID/required", fe.Field(), fe.Tag())
		}
		if !strings.Contains(fe.Error(), "UserID is required") {
			t.Errorf("message = %q", fe.Error())
		}
	})

	t.Run("out of range", func(t *testing.T) {
		req := trainRequest{NFactors: 1000, UserID: "u1"}
		verr := ValidateStruct(&req)
		if verr == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(verr.Error(), "NFactors must be at most 500") {
			t.Errorf("message = %q", verr.Error())
		}
	})

	t.Run("oneof", func(t *testing.T) {
		req := trainRequest{NFactors: 10, InteractionType: "teleport", UserID: "u1"}
		verr := ValidateStruct(&req)
		if verr == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(verr.Error(), "must be one of") {
			t.Errorf("message = %q", verr.Error())
		}
	})
}

func TestToAPIError(t *testing.T) {
	t.Run("single failure carries field details", func(t *testing.T) {
		verr := ValidateStruct(&trainRequest{NFactors: 10})
		if verr == nil {
			t.Fatal("expected validation error")
		}

		apiErr := verr.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("code = %s, want VALIDATION_ERROR", apiErr.Code)
		}
		if apiErr.Details["field"] != "UserID" {
			t.Errorf("details.field = %v, want UserID", apiErr.Details["field"])
		}
	})

	t.Run("multiple failures are listed", func(t *testing.T) {
		verr := ValidateStruct(&trainRequest{NFactors: 0, InteractionType: "bad"})
		if verr == nil {
			t.Fatal("expected validation error")
		}
		if len(verr.Errors()) < 2 {
			t.Fatalf("got %d errors, want >= 2", len(verr.Errors()))
		}

		apiErr := verr.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok {
			t.Fatalf("details.fields has type %T", apiErr.Details["fields"])
		}
		if len(fields) != len(verr.Errors()) {
			t.Errorf("fields len = %d, want %d", len(fields), len(verr.Errors()))
		}
	})

	t.Run("string length message", func(t *testing.T) {
		type nameReq struct {
			Name string `validate:"min=3"`
		}
		verr := ValidateStruct(&nameReq{Name: "ab"})
		if verr == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(verr.Error(), "at least 3 characters") {
			t.Errorf("message = %q", verr.Error())
		}
	})
}
