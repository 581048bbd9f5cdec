// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/pkgweave/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "configuration_error",
			code:    errors.ErrConfiguration,
			message: "entrypoints are not defined",
			wantStr: "[CONFIGURATION] entrypoints are not defined",
		},
		{
			name:    "filesystem_error",
			code:    errors.ErrFilesystem,
			message: "rename failed",
			wantStr: "[FILESYSTEM] rename failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrConfiguration, "duplicated %s name %q", "executable", "tool")
	if err.Message != `duplicated executable name "tool"` {
		t.Errorf("Newf() message = %q", err.Message)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrInternal, "internal error")

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[INTERNAL] internal error: base error"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrInternal, "internal error"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if err := errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"); err != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrFilesystem, "rename failed").
		WithDetail("from", "esm/a.js").
		WithDetail("to", "a.js")

	if err.Details["from"] != "esm/a.js" {
		t.Errorf("WithDetail() from = %v", err.Details["from"])
	}
	if got := errors.GetErrorDetails(err)["to"]; got != "a.js" {
		t.Errorf("GetErrorDetails() to = %v", got)
	}
	if errors.GetErrorDetails(stderrors.New("plain")) != nil {
		t.Error("GetErrorDetails() should be nil for standard errors")
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrConfiguration, "error 1")
	err2 := errors.New(errors.ErrConfiguration, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	if !err1.Is(err2) {
		t.Error("Is() should return true for same code")
	}
	if err1.Is(err3) {
		t.Error("Is() should return false for different codes")
	}
	if !stderrors.Is(err1, err2) {
		t.Error("errors.Is() should work with WeaveError")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      errors.Wrap(stderrors.New("base"), errors.ErrFilesystem, "denied"),
			code:     errors.ErrFilesystem,
			expected: true,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrTranspile, "failed")); got != errors.ErrTranspile {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(stderrors.New("standard")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(nil); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode(nil) = %v", got)
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	fsErr := errors.Wrap(rootCause, errors.ErrFilesystem, "cannot rename file")
	buildErr := errors.Wrap(fsErr, errors.ErrInternal, "reconcile failed")

	if !errors.IsErrorCode(buildErr, errors.ErrInternal) {
		t.Error("Top level should have ErrInternal code")
	}

	var middle *errors.WeaveError
	if stderrors.As(buildErr.Unwrap(), &middle) && middle.Code != errors.ErrFilesystem {
		t.Error("Middle error should have ErrFilesystem code")
	}

	if !stderrors.Is(buildErr, rootCause) {
		t.Error("Should find root cause with errors.Is")
	}
}

func TestAs(t *testing.T) {
	err := errors.Wrap(errors.New(errors.ErrManifest, "bad"), errors.ErrInternal, "outer")

	var target *errors.WeaveError
	if !errors.As(err, &target) {
		t.Fatal("As() should find a WeaveError")
	}
	if target.Code != errors.ErrInternal {
		t.Errorf("As() code = %v, want %v", target.Code, errors.ErrInternal)
	}
	if errors.As(stderrors.New("plain"), &target) {
		t.Error("As() should not match a standard error")
	}
}
