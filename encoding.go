package idcache

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// A Cache encodes as the ordered sequence of its values, e.g. ["foo","bar"] in JSON.
// Decoding rebuilds the reverse index and fails with *DuplicateValueError when the
// sequence repeats a value. Encode through a *Cache; a Cache value has no exported fields.

var (
	_ json.Marshaler        = (*Cache[uint32, string])(nil)
	_ json.Unmarshaler      = (*Cache[uint32, string])(nil)
	_ cbor.Marshaler        = (*Cache[uint32, string])(nil)
	_ cbor.Unmarshaler      = (*Cache[uint32, string])(nil)
	_ msgpack.CustomEncoder = (*Cache[uint32, string])(nil)
	_ msgpack.CustomDecoder = (*Cache[uint32, string])(nil)
)

// seq returns the ordered values; never nil so empty caches encode as an empty list.
func (c *Cache[I, T]) seq() []T {
	if c.values == nil {
		return []T{}
	}
	return c.values
}

func (c *Cache[I, T]) restore(values []T) error {
	r, err := FromValues[I, T](values)
	if err != nil {
		return err
	}
	*c = *r
	return nil
}

func (c *Cache[I, T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.seq())
}

func (c *Cache[I, T]) UnmarshalJSON(b []byte) error {
	var values []T
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	return c.restore(values)
}

func (c *Cache[I, T]) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(c.seq())
}

func (c *Cache[I, T]) UnmarshalCBOR(b []byte) error {
	var values []T
	if err := cbor.Unmarshal(b, &values); err != nil {
		return err
	}
	return c.restore(values)
}

func (c *Cache[I, T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(c.seq())
}

func (c *Cache[I, T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	var values []T
	if err := dec.Decode(&values); err != nil {
		return err
	}
	return c.restore(values)
}
