package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBuffered() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestRedactsKeysByDefault(t *testing.T) {
	l, buf := newBuffered()
	h := New(l, Options{})
	h.SelfHeal("snap:secret-ns:en", "corrupt")

	out := buf.String()
	if strings.Contains(out, "secret-ns") {
		t.Fatalf("storage key leaked: %q", out)
	}
	if !strings.Contains(out, "reason=corrupt") || !strings.Contains(out, "idcache.self_heal") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCustomRedactor(t *testing.T) {
	l, buf := newBuffered()
	h := New(l, Options{Redact: func(k string) string { return "K" }})
	h.VersionBumpError("snap:ns:en", errors.New("boom"))
	if out := buf.String(); !strings.Contains(out, "key=K") || !strings.Contains(out, "err=boom") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSampling(t *testing.T) {
	l, buf := newBuffered()
	h := New(l, Options{SelfHealEvery: 3})
	for i := 0; i < 9; i++ {
		h.SelfHeal("k", "decode")
	}
	if n := strings.Count(buf.String(), "idcache.self_heal"); n != 3 {
		t.Fatalf("logged %d of 9 with 1/3 sampling", n)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	h := New(nil, Options{})
	h.SelfHeal("k", "corrupt")
	h.ProviderSetRejected("k")
	h.VersionReadError(1, errors.New("x"))
	h.VersionBumpError("k", errors.New("x"))
	h.InvalidateOutage("n", errors.New("a"), errors.New("b"))
	h.LocalVersionsShared()
}
