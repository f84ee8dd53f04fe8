package buildvars

import "testing"

func TestVersionOrDefault(t *testing.T) {
	t.Cleanup(func() { Version, Commit = "", "" })
	if got := VersionOrDefault("dev"); got != "dev" {
		t.Fatalf("expected dev, got %q", got)
	}
	Version, Commit = "1.4.0", "abc1234"
	if got := VersionOrDefault("dev"); got != "1.4.0 (abc1234)" {
		t.Fatalf("unexpected version string %q", got)
	}
}
