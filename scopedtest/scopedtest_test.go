package scopedtest

import (
	"testing"

	"github.com/kolkov/scopedref/internal/scoped/abort"
)

func TestCatchViolation(t *testing.T) {
	v := CatchViolation(func() {
		abort.Fatal(&abort.Violation{Kind: abort.KindOutstanding, Backend: "shared", Live: 1})
	})
	if v == nil || v.Live != 1 {
		t.Fatalf("CatchViolation = %+v, want the raised violation", v)
	}
	if abort.Recoverable() {
		t.Error("recoverable mode should be restored")
	}
}

func TestCatchViolationNone(t *testing.T) {
	if v := CatchViolation(func() {}); v != nil {
		t.Errorf("CatchViolation = %+v, want nil", v)
	}
}

func TestCatchViolationRepanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "other" {
			t.Errorf("recovered %v, want other", r)
		}
		if abort.Recoverable() {
			t.Error("recoverable mode should be restored after a foreign panic")
		}
	}()
	CatchViolation(func() { panic("other") })
}

func TestRecoverableRestores(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		Recoverable(t)
		if !abort.Recoverable() {
			t.Error("Recoverable should switch the reporter")
		}
	})
	if abort.Recoverable() {
		t.Error("Recoverable should be undone by Cleanup")
	}
}
