package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/exists-forall/id-cache/internal/compress"
)

const (
	version      byte = 1
	kindSnapshot byte = 1

	// magic(4) | ver(1) | kind(1) | comp(1) | gen(8) | count(4) | rawLen(4) | crc(4) | plen(4)
	headerLen = 4 + 1 + 1 + 1 + 8 + 4 + 4 + 4 + 4
)

var (
	ErrCorrupt  = errors.New("idcache: corrupt snapshot")
	ErrTooLarge = errors.New("idcache: snapshot payload too large")
	magic4      = [...]byte{'I', 'D', 'C', 'S'}

	// maxLen bounds payload and body lengths; both are stored as u32.
	maxLen uint64 = math.MaxUint32

	castagnoli = crc32.MakeTable(crc32.Castagnoli)
)

// Snapshot is a decoded frame. Payload is the uncompressed codec output.
type Snapshot struct {
	Gen         uint64
	Count       uint32
	Compression compress.Kind // as stored
	Checksum    uint32        // CRC-32C of the uncompressed payload
	Payload     []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Checksum returns the CRC-32C of payload.
func Checksum(payload []byte) uint32 {
	return crc32.Checksum(payload, castagnoli)
}

// EncodeSnapshot frames payload, compressing it with comp when that shrinks it.
// The returned Snapshot describes what was written.
func EncodeSnapshot(gen uint64, count uint32, comp compress.Kind, payload []byte) ([]byte, Snapshot, error) {
	if uint64(len(payload)) > maxLen {
		return nil, Snapshot{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(payload))
	}
	sum := Checksum(payload)
	body, used, err := compress.Compress(comp, payload)
	if err != nil {
		return nil, Snapshot{}, err
	}
	if uint64(len(body)) > maxLen {
		return nil, Snapshot{}, fmt.Errorf("%w: %d bytes compressed", ErrTooLarge, len(body))
	}

	var buf bytes.Buffer
	buf.Grow(headerLen + len(body))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindSnapshot)
	buf.WriteByte(byte(used))

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], gen)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], count)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], sum)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(body)))
	buf.Write(u4[:])

	buf.Write(body)
	return buf.Bytes(), Snapshot{Gen: gen, Count: count, Compression: used, Checksum: sum, Payload: payload}, nil
}

// DecodeSnapshot validates and unpacks a frame. Any structural problem, trailing
// bytes, or checksum mismatch yields ErrCorrupt. maxRaw > 0 caps the uncompressed
// payload length; the cap and the compression bound are both checked before the
// payload is decompressed.
func DecodeSnapshot(b []byte, maxRaw int) (Snapshot, error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version || b[5] != kindSnapshot {
		return Snapshot{}, ErrCorrupt
	}
	comp := compress.Kind(b[6])
	if !comp.Valid() {
		return Snapshot{}, ErrCorrupt
	}

	off := 7
	gen := binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	count := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	rawLen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	sum := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4

	if plen < 0 || plen != len(b)-off { // exact: no truncation, no trailing bytes
		return Snapshot{}, ErrCorrupt
	}
	if maxRaw > 0 && rawLen > maxRaw {
		return Snapshot{}, ErrCorrupt
	}
	if uint64(rawLen) > compress.MaxRawLen(comp, plen) {
		return Snapshot{}, ErrCorrupt
	}

	payload, err := compress.Decompress(comp, b[off:], rawLen)
	if err != nil {
		return Snapshot{}, ErrCorrupt
	}
	if Checksum(payload) != sum {
		return Snapshot{}, ErrCorrupt
	}

	return Snapshot{Gen: gen, Count: count, Compression: comp, Checksum: sum, Payload: payload}, nil
}
