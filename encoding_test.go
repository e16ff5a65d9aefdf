package idcache

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

func fooBar() *Cache[wordID, string] {
	c := New[wordID, string]()
	c.MakeID("foo")
	c.MakeID("bar")
	return c
}

func TestJSONIsOrderedSequence(t *testing.T) {
	b, err := json.Marshal(fooBar())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `["foo","bar"]` {
		t.Fatalf("got %s", b)
	}

	var got Cache[wordID, string]
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(fooBar()) {
		t.Fatalf("round trip mismatch: %v", &got)
	}
	if id, ok := got.Lookup("bar"); !ok || id != 1 {
		t.Fatalf("Lookup(bar)=(%d,%v)", id, ok)
	}
}

func TestJSONEmptyCache(t *testing.T) {
	b, err := json.Marshal(New[wordID, string]())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `[]` {
		t.Fatalf("got %s", b)
	}
}

func TestJSONRejectsDuplicates(t *testing.T) {
	var c Cache[wordID, string]
	err := json.Unmarshal([]byte(`["foo","foo"]`), &c)
	if !errors.Is(err, ErrDuplicateValue) {
		t.Fatalf("want ErrDuplicateValue, got %v", err)
	}
}

func TestJSONNestedInStruct(t *testing.T) {
	type doc struct {
		Words *Cache[wordID, string] `json:"words"`
	}
	b, err := json.Marshal(doc{Words: fooBar()})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"words":["foo","bar"]}` {
		t.Fatalf("got %s", b)
	}
	var out doc
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !out.Words.Equal(fooBar()) {
		t.Fatalf("nested round trip mismatch: %v", out.Words)
	}
}

func TestCBORRoundTrip(t *testing.T) {
	b, err := cbor.Marshal(fooBar())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want, _ := cbor.Marshal([]string{"foo", "bar"})
	if string(b) != string(want) {
		t.Fatalf("cbor encoding is not the plain sequence: %x vs %x", b, want)
	}

	var got Cache[wordID, string]
	if err := cbor.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(fooBar()) {
		t.Fatalf("round trip mismatch: %v", &got)
	}

	dup, _ := cbor.Marshal([]string{"x", "x"})
	var bad Cache[wordID, string]
	if err := cbor.Unmarshal(dup, &bad); err == nil {
		t.Fatalf("expected error on duplicate")
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	b, err := msgpack.Marshal(fooBar())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Cache[wordID, string]
	if err := msgpack.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(fooBar()) {
		t.Fatalf("round trip mismatch: %v", &got)
	}

	var plain []string
	if err := msgpack.Unmarshal(b, &plain); err != nil || len(plain) != 2 || plain[0] != "foo" {
		t.Fatalf("msgpack encoding is not the plain sequence: %v %v", plain, err)
	}

	dup, _ := msgpack.Marshal([]string{"x", "x"})
	var bad Cache[wordID, string]
	if err := msgpack.Unmarshal(dup, &bad); err == nil {
		t.Fatalf("expected error on duplicate")
	}
}
