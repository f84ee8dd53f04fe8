package logging

import (
	"bytes"
	"strings"
	"testing"
)

// TestLoggingHelpers_WriteToBuffer verifies the package helper functions write
// formatted messages to the package-level logger `L`.
func TestLoggingHelpers_WriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	defer func() { L = prev }()
	SetOutput(&buf)
	SetDebug(true)

	Debugf("hello %s", "dbg")
	Infof("info %d", 1)
	Warnf("warn")
	Errorf("err %v", "E")

	out := buf.String()
	for _, want := range []string{"hello dbg", "info 1", "warn", "err E"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q; got: %s", want, out)
		}
	}
}

func TestSetDebugFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	defer func() { L = prev }()
	SetOutput(&buf)
	SetDebug(false)

	if DebugEnabled() {
		t.Fatalf("debug should be disabled")
	}
	Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug output leaked: %s", buf.String())
	}
}
