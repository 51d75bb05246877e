package version

import "testing"

func TestString(t *testing.T) {
	want := "dev (commit unknown, built unknown)"
	if got := String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
