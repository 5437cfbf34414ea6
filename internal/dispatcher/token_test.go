package dispatcher

import (
	"testing"
)

func TestParseLineArgsAndFlags(t *testing.T) {
	args, flags, err := ParseLine(`plot date 20d_close --title="My Chart" -grid --res=40`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 3 || args[0] != "plot" || args[2] != "20d_close" {
		t.Fatalf("unexpected args %v", args)
	}
	if flags["title"] != "My Chart" {
		t.Fatalf("expected quoted title, got %q", flags["title"])
	}
	if flags["grid"] != "true" {
		t.Fatalf("expected grid flag set, got %q", flags["grid"])
	}
	if flags["res"] != "40" {
		t.Fatalf("expected res 40, got %q", flags["res"])
	}
}

func TestParseLineBareDoubleDashFlag(t *testing.T) {
	_, flags, err := ParseLine("iv surface --legend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flags["legend"] != "true" {
		t.Fatalf("expected legend true, got %q", flags["legend"])
	}
}

func TestParseLineUnbalancedQuote(t *testing.T) {
	if _, _, err := ParseLine(`export "half quoted`); err == nil {
		t.Fatalf("expected unbalanced quote error")
	}
}

func TestParseLineEmpty(t *testing.T) {
	args, flags, err := ParseLine("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 0 || len(flags) != 0 {
		t.Fatalf("expected nothing, got %v %v", args, flags)
	}
}
