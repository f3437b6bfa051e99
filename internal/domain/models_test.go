package domain

import "testing"

func TestParseAccountStatus(t *testing.T) {
	if s, ok := ParseAccountStatus(" suspended "); !ok || s != StatusSuspended {
		t.Fatalf("ParseAccountStatus suspended = %q %v", s, ok)
	}
	if _, ok := ParseAccountStatus("deleted"); ok {
		t.Fatalf("expected unknown text to be rejected")
	}
}

func TestNormalizeScreenName(t *testing.T) {
	if got := NormalizeScreenName("  @NewOrganizing "); got != "neworganizing" {
		t.Fatalf("NormalizeScreenName got %q", got)
	}
}
