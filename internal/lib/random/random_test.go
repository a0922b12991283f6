package random

import (
	"strings"
	"testing"
)

func TestNewRandomString(t *testing.T) {
	a := NewRandomString(64)
	b := NewRandomString(64)

	if len(a) != 64 {
		t.Fatalf("unexpected length %d", len(a))
	}
	if a == b {
		t.Fatalf("two seeds collided: %s", a)
	}
	for _, r := range a {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("unexpected rune %q", r)
		}
	}
}
