package utils

import "testing"

func TestLocalizedDescFallbackOrder(t *testing.T) {
	blob := `{"en":"Sign in","ja":"ログイン"}`
	if got := LocalizedDesc(blob, "ja"); got != "ログイン" {
		t.Fatalf("ja = %q", got)
	}
	if got := LocalizedDesc(blob, "de"); got != "Sign in" {
		t.Fatalf("fallback to en = %q", got)
	}
	if got := LocalizedDesc(`{"zh":"登录"}`, "de"); got != "Task" {
		t.Fatalf("placeholder = %q", got)
	}
}

func TestLocalizedDescMalformedBlob(t *testing.T) {
	if got := LocalizedDesc("just a plain string", "en"); got != "just a plain string" {
		t.Fatalf("malformed blob = %q", got)
	}
	if got := LocalizedDesc("", "en"); got != "Task" {
		t.Fatalf("empty blob = %q", got)
	}
}
