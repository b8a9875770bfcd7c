package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindsSurviveWrapping(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", Validation("roleId", "is required"), IsValidation},
		{"not found", NotFound("role", "abc123"), IsNotFound},
		{"conflict", Conflict("role name already in use"), IsConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.check(tc.err) {
				t.Error("Expected kind to match the bare error")
			}
			wrapped := fmt.Errorf("saving access matrix: %w", tc.err)
			if !tc.check(wrapped) {
				t.Error("Expected kind to survive %w wrapping")
			}
		})
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	err := NotFound("organization", "")
	if IsValidation(err) || IsConflict(err) {
		t.Error("Expected NotFoundError to match only IsNotFound")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("Expected plain error to match no kind")
	}
}

func TestErrorMessages(t *testing.T) {
	if got := Validation("userId", "must be a valid id").Error(); got != "userId: must be a valid id" {
		t.Errorf("Unexpected validation message: %q", got)
	}
	if got := Validation("", "permissions payload is empty").Error(); got != "permissions payload is empty" {
		t.Errorf("Unexpected field-less validation message: %q", got)
	}
	if got := NotFound("role", "abc").Error(); got != "role abc not found" {
		t.Errorf("Unexpected not-found message: %q", got)
	}
	if got := NotFound("record", "").Error(); got != "record not found" {
		t.Errorf("Unexpected id-less not-found message: %q", got)
	}
}
