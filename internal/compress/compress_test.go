package compress

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func TestRoundTripCompressible(t *testing.T) {
	data := []byte(strings.Repeat(`"account:assets:bank",`, 200))
	for _, kind := range []Kind{None, LZ4, Zstd} {
		out, used, err := Compress(kind, data)
		if err != nil {
			t.Fatalf("%s: compress: %v", kind, err)
		}
		if used != kind {
			t.Fatalf("%s: compressible input stored as %s", kind, used)
		}
		if kind != None && len(out) >= len(data) {
			t.Fatalf("%s: no size reduction (%d >= %d)", kind, len(out), len(data))
		}
		back, err := Decompress(used, out, len(data))
		if err != nil {
			t.Fatalf("%s: decompress: %v", kind, err)
		}
		if !bytes.Equal(back, data) {
			t.Fatalf("%s: round trip mismatch", kind)
		}
	}
}

func TestIncompressibleFallsBackToNone(t *testing.T) {
	data := make([]byte, 256)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}
	for _, kind := range []Kind{LZ4, Zstd} {
		out, used, err := Compress(kind, data)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if used != None || !bytes.Equal(out, data) {
			t.Fatalf("%s: random data should be stored raw, used=%s", kind, used)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	out, used, err := Compress(Zstd, nil)
	if err != nil || used != None || len(out) != 0 {
		t.Fatalf("empty: out=%v used=%s err=%v", out, used, err)
	}
}

func TestDecompressLengthMismatch(t *testing.T) {
	data := []byte(strings.Repeat("abc", 100))
	out, used, _ := Compress(LZ4, data)
	if _, err := Decompress(used, out, len(data)+1); err == nil {
		t.Fatalf("expected error for wrong raw length")
	}
	if _, err := Decompress(None, data, len(data)-1); err == nil {
		t.Fatalf("expected error for wrong raw length (none)")
	}
}

func TestUnknownKind(t *testing.T) {
	if _, _, err := Compress(Kind(9), []byte("x")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
	if _, err := Decompress(Kind(9), []byte("x"), 1); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
	if Kind(9).Valid() || !Zstd.Valid() {
		t.Fatalf("Valid mismatch")
	}
	if Kind(9).String() != "kind(9)" {
		t.Fatalf("String=%q", Kind(9).String())
	}
}

func TestDecompressRejectsImpossibleExpansion(t *testing.T) {
	data := []byte(strings.Repeat("abc", 100))
	out, used, _ := Compress(LZ4, data)
	if used != LZ4 {
		t.Fatalf("expected lz4 block, got %s", used)
	}
	if _, err := Decompress(LZ4, out, 1<<30); !errors.Is(err, ErrExpansion) {
		t.Fatalf("want ErrExpansion, got %v", err)
	}

	zout, zused, _ := Compress(Zstd, data)
	if zused != Zstd {
		t.Fatalf("expected zstd block, got %s", zused)
	}
	if _, err := Decompress(Zstd, zout, int(MaxRawLen(Zstd, len(zout)))+1); !errors.Is(err, ErrExpansion) {
		t.Fatalf("want ErrExpansion, got %v", err)
	}
	if MaxRawLen(None, 7) != 7 || MaxRawLen(LZ4, 2) != 510 {
		t.Fatalf("MaxRawLen bounds changed")
	}
}
