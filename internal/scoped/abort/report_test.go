package abort

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/kolkov/scopedref/internal/scoped/stackdepot"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindOutstanding, "outstanding-handles"},
		{KindMoved, "guard-moved"},
		{KindOverRelease, "over-release"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestViolation_Is(t *testing.T) {
	tests := []struct {
		kind  Kind
		match error
		other error
	}{
		{KindOutstanding, ErrHandlesOutstanding, ErrGuardMoved},
		{KindMoved, ErrGuardMoved, ErrOverRelease},
		{KindOverRelease, ErrOverRelease, ErrHandlesOutstanding},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			var err error = &Violation{Kind: tt.kind, Backend: "shared", Live: 1}
			if !errors.Is(err, ErrSafetyViolation) {
				t.Error("every violation should match ErrSafetyViolation")
			}
			if !errors.Is(err, tt.match) {
				t.Errorf("expected match with %v", tt.match)
			}
			if errors.Is(err, tt.other) {
				t.Errorf("unexpected match with %v", tt.other)
			}
		})
	}
}

func TestViolation_Error(t *testing.T) {
	v := &Violation{Kind: KindOutstanding, Backend: "pinned", Live: 3}
	want := "scoped: pinned guard closed while 3 lifted handle(s) still exist"
	if got := v.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseGID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"goroutine 123 [running]:\nmain.main()", 123},
		{"goroutine 1 [running]:", 1},
		{"goroutine ", 0},
		{"gorout", 0},
		{"thread 5 [running]", 0},
	}

	for _, tt := range tests {
		if got := parseGID([]byte(tt.in)); got != tt.want {
			t.Errorf("parseGID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGoroutineIDDistinct(t *testing.T) {
	mainID := goroutineID()
	if mainID <= 0 {
		t.Fatalf("goroutineID() = %d, want positive", mainID)
	}

	other := make(chan int64)
	go func() { other <- goroutineID() }()
	if id := <-other; id == mainID || id <= 0 {
		t.Errorf("goroutine IDs should differ and be positive: %d vs %d", mainID, id)
	}
}

func TestParseTraceback(t *testing.T) {
	tests := []struct {
		in   string
		want Traceback
	}{
		{"", TracebackSingle},
		{"single", TracebackSingle},
		{"1", TracebackSingle},
		{"none", TracebackNone},
		{"0", TracebackNone},
		{"all", TracebackAll},
		{"2", TracebackAll},
		{"bogus", TracebackSingle},
	}

	for _, tt := range tests {
		if got := ParseTraceback(tt.in); got != tt.want {
			t.Errorf("ParseTraceback(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestFormat checks the banner layout for each kind.
func TestFormat(t *testing.T) {
	tests := []struct {
		kind     Kind
		headline string
	}{
		{KindOutstanding, "FATAL: SCOPED REFERENCE OUTLIVES ITS GUARD"},
		{KindMoved, "FATAL: PINNED GUARD MOVED"},
		{KindOverRelease, "FATAL: SCOPED HANDLE OVER-RELEASED"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			v := &Violation{Kind: tt.kind, Backend: "shared", Live: 2, Goroutine: 7}
			out := v.String()

			if !strings.HasPrefix(out, banner) || !strings.HasSuffix(out, banner) {
				t.Errorf("report should be framed by banners, got:\n%s", out)
			}
			if !strings.Contains(out, tt.headline) {
				t.Errorf("missing headline %q, got:\n%s", tt.headline, out)
			}
			if !strings.Contains(out, "goroutine 7") {
				t.Errorf("missing goroutine id, got:\n%s", out)
			}
			if !strings.Contains(out, "Aborting.") {
				t.Errorf("missing abort line, got:\n%s", out)
			}
		})
	}
}

func TestFormatHintWhenTracebackNone(t *testing.T) {
	v := &Violation{Kind: KindOutstanding, Backend: "shared", Live: 1, traceback: TracebackNone}
	if out := v.String(); !strings.Contains(out, "SCOPEDTRACEBACK=single") {
		t.Errorf("expected re-run hint, got:\n%s", out)
	}
}

func TestFormatOrigins(t *testing.T) {
	stackdepot.Reset()
	v := &Violation{
		Kind:    KindOutstanding,
		Backend: "shared",
		Live:    1,
		Origins: []uint64{stackdepot.CaptureStack(0)},
	}

	out := v.String()
	if !strings.Contains(out, "Outstanding handle created at:") {
		t.Errorf("missing origin section, got:\n%s", out)
	}
	if !strings.Contains(out, "TestFormatOrigins") {
		t.Errorf("origin should point at the test, got:\n%s", out)
	}
}

// TestFatalRecoverable verifies the harness mode panics with the violation.
func TestFatalRecoverable(t *testing.T) {
	prev := SetRecoverable(true)
	defer SetRecoverable(prev)

	defer func() {
		r := recover()
		v, ok := r.(*Violation)
		if !ok {
			t.Fatalf("expected *Violation panic, got %T (%v)", r, r)
		}
		if v.Goroutine <= 0 {
			t.Errorf("Goroutine = %d, want positive", v.Goroutine)
		}
		if len(v.Stack) == 0 {
			t.Error("expected a captured stack in single traceback mode")
		}
	}()

	Fatal(&Violation{Kind: KindOutstanding, Backend: "shared", Live: 1})
	t.Fatal("Fatal returned in recoverable mode")
}

// TestFatalExits verifies the production path writes the report and exits.
func TestFatalExits(t *testing.T) {
	t.Setenv(TracebackEnv, "single")

	var out bytes.Buffer
	var code int
	origExit, origStderr := exit, stderr
	exit = func(c int) { code = c }
	stderr = &out
	defer func() { exit, stderr = origExit, origStderr }()

	Fatal(&Violation{Kind: KindOutstanding, Backend: "pinned", Live: 4})

	if code != ExitCode {
		t.Errorf("exit code = %d, want %d", code, ExitCode)
	}
	report := out.String()
	if !strings.Contains(report, "pinned guard closed by goroutine") {
		t.Errorf("unexpected report:\n%s", report)
	}
	if !strings.Contains(report, "TestFatalExits") {
		t.Errorf("report should include the caller's stack:\n%s", report)
	}
}

func TestFatalAllGoroutines(t *testing.T) {
	t.Setenv(TracebackEnv, "all")

	var out bytes.Buffer
	origExit, origStderr := exit, stderr
	exit = func(int) {}
	stderr = &out
	defer func() { exit, stderr = origExit, origStderr }()

	Fatal(&Violation{Kind: KindOutstanding, Backend: "shared", Live: 1})

	if !strings.Contains(out.String(), "All goroutines:") {
		t.Errorf("expected goroutine dump, got:\n%s", out.String())
	}
}
