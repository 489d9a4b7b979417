package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidTechnology, "no via above height %d", 3)

	if err.Code != ErrCodeInvalidTechnology {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidTechnology)
	}

	if err.Message != "no via above height 3" {
		t.Errorf("Message = %v, want %v", err.Message, "no via above height 3")
	}

	expected := "INVALID_TECHNOLOGY: no via above height 3"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("toml: line 3: expected '='")
	err := Wrap(ErrCodeInvalidTechnology, cause, "load mocmos.toml")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidArgument, "nil port"),
			code:     ErrCodeInvalidArgument,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidArgument, "nil port"),
			code:     ErrCodeInvalidTechnology,
			expected: false,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("track m2: %w", New(ErrCodeInvalidArgument, "nil port")),
			code:     ErrCodeInvalidArgument,
			expected: true,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeInvalidPlan, New(ErrCodeInvalidArgument, "inner"), "outer"),
			code:     ErrCodeInvalidPlan,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeLayoutNotFound, "test"), ErrCodeLayoutNotFound},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "friendly message")); got != "friendly message" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestClassification(t *testing.T) {
	if !IsConfiguration(New(ErrCodeInvalidTechnology, "x")) {
		t.Error("IsConfiguration should match INVALID_TECHNOLOGY")
	}
	if IsConfiguration(New(ErrCodeInvalidArgument, "x")) {
		t.Error("IsConfiguration should not match INVALID_ARGUMENT")
	}
	for _, code := range []Code{ErrCodeNotFound, ErrCodeTechnologyNotFound, ErrCodeLayoutNotFound, ErrCodeFileNotFound} {
		if !IsNotFound(New(code, "x")) {
			t.Errorf("IsNotFound(%s) = false", code)
		}
	}
	if IsNotFound(New(ErrCodeInternal, "x")) {
		t.Error("IsNotFound(INTERNAL_ERROR) = true")
	}
}
