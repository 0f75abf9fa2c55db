package misc

import "testing"

func TestGetenv(t *testing.T) {
	const key = "MISC_TEST_KEY"

	t.Setenv(key, "")
	if got := Getenv(key, "fallback"); got != "fallback" {
		t.Fatalf("empty env must fall back: got %q", got)
	}

	t.Setenv(key, "value")
	if got := Getenv(key, "fallback"); got != "value" {
		t.Fatalf("env must win: got %q", got)
	}
}
