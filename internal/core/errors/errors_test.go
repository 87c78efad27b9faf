package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "resource not found")
		if err.Error() != "[NOT_FOUND] resource not found" {
			t.Errorf("expected [NOT_FOUND] resource not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeEnvironment, "import failed")
		expected := "[ENVIRONMENT_FAULT] import failed: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeNameResolution, "name 'foo' is not defined")
		if !IsCode(err, CodeNameResolution) {
			t.Error("expected IsCode to return true for CodeNameResolution")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("tier 1: %w", New(CodeUnresolvableName, "call base"))
		if !IsCode(err, CodeUnresolvableName) {
			t.Error("expected IsCode to see through fmt.Errorf wrapping")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeParse, "syntax error"), CtxPath, "a.py")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxPath] != "a.py" {
			t.Errorf("expected path context, got %v", de.Context)
		}

		plain := AddContext(errors.New("boom"), CtxSymbol, "foo")
		if !IsCode(plain, CodeInternal) {
			t.Error("expected plain errors to be wrapped as internal")
		}
	})

	t.Run("IsRecoverable", func(t *testing.T) {
		if !IsRecoverable(New(CodeUnresolvableName, "x")) || !IsRecoverable(New(CodeNameResolution, "x")) {
			t.Error("expected name errors to be recoverable")
		}
		if IsRecoverable(New(CodeEnvironment, "x")) {
			t.Error("expected environment faults to be fatal")
		}
	})
}
