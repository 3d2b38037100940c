package errors

import (
	"strings"
	"testing"
)

func TestRecover_WithPanic(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("something went wrong")
	}

	err := fn()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatal("Error should be castable to *PanicError")
	}
	if panicErr.Operation != "TestOperation" {
		t.Errorf("Operation = %v, want TestOperation", panicErr.Operation)
	}
	if !strings.Contains(panicErr.StackTrace, "recovery_test.go") {
		t.Error("Stack trace should reference the panicking file")
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	if err := fn(); err != nil {
		t.Errorf("Expected nil error without panic, got %v", err)
	}
}

func TestSafeExecute_Success(t *testing.T) {
	err := SafeExecute("op", func() error { return nil })
	if err != nil {
		t.Errorf("SafeExecute() = %v, want nil", err)
	}
}

func TestSafeExecute_FunctionError(t *testing.T) {
	want := New("handler failed")
	err := SafeExecute("op", func() error { return want })
	if !Is(err, want) {
		t.Errorf("SafeExecute() = %v, want %v", err, want)
	}
}

func TestSafeExecute_Panic(t *testing.T) {
	err := SafeExecute("op", func() error { panic(42) })
	if err == nil {
		t.Fatal("SafeExecute() = nil, want error from panic")
	}
	if !strings.Contains(err.Error(), "panic in op: 42") {
		t.Errorf("Error() = %v, want panic message", err.Error())
	}
}
