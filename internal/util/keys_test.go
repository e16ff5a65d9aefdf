package util

import "testing"

func TestKey(t *testing.T) {
	if got := Key("snap", "app:words", "en"); got != "snap:9:app:words:en" {
		t.Fatalf("Key=%q", got)
	}
}

func TestKeyIsUnambiguous(t *testing.T) {
	pairs := [][2]string{
		{"a:b", "c"},
		{"a", "b:c"},
		{"a:b:c", ""},
		{"", "a:b:c"},
	}
	seen := make(map[string][2]string)
	for _, p := range pairs {
		k := Key("snap", p[0], p[1])
		if prev, ok := seen[k]; ok {
			t.Fatalf("ns=%q name=%q collides with ns=%q name=%q at %q", p[0], p[1], prev[0], prev[1], k)
		}
		seen[k] = p
	}
}

func TestShortHashIsStableAndShort(t *testing.T) {
	a := ShortHash("snap:ns:k")
	if len(a) != 16 {
		t.Fatalf("len=%d", len(a))
	}
	if a != ShortHash("snap:ns:k") {
		t.Fatalf("not deterministic")
	}
	if a == ShortHash("snap:ns:other") {
		t.Fatalf("distinct inputs collided")
	}
}
