// Package compress implements block compression for snapshot payloads.
package compress

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Kind identifies a compression algorithm. It is stored in the snapshot frame.
type Kind uint8

const (
	None Kind = 0
	// LZ4 block compression (fast, modest ratio).
	LZ4 Kind = 1
	// Zstd block compression (better ratio for large string tables).
	Zstd Kind = 2
)

var ErrUnknownKind = errors.New("compress: unknown kind")

// ErrExpansion is returned by Decompress when the declared raw length is more than the
// compressed block could possibly expand to.
var ErrExpansion = errors.New("compress: raw length exceeds block bound")

const (
	// An LZ4 match length byte adds at most 255 output bytes.
	lz4MaxRatio = 255
	// A zstd RLE block is 4 bytes on the wire and at most 128 KiB decoded.
	zstdMaxRatio = (128 << 10) / 4

	// Frames record lengths as u32.
	maxDecoded = math.MaxUint32
)

// MaxRawLen returns the largest raw length n compressed bytes of kind can decode to.
func MaxRawLen(kind Kind, n int) uint64 {
	switch kind {
	case None:
		return uint64(n)
	case LZ4:
		return uint64(n) * lz4MaxRatio
	case Zstd:
		return uint64(n) * zstdMaxRatio
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k <= Zstd }

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxDecoded))
	return dec
}

// Compress compresses data with kind. It returns the kind actually used: when
// compression does not shrink the block, data is returned unchanged with None.
func Compress(kind Kind, data []byte) ([]byte, Kind, error) {
	if kind == None || len(data) == 0 {
		return data, None, nil
	}

	var out []byte
	switch kind {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, None, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 { // incompressible
			return data, None, nil
		}
		out = buf[:n]
	case Zstd:
		enc := getZstdEncoder()
		out = enc.EncodeAll(data, make([]byte, 0, len(data)))
		zstdEncoderPool.Put(enc)
	default:
		return nil, None, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}

	if len(out) >= len(data) {
		return data, None, nil
	}
	return out, kind, nil
}

// Decompress reverses Compress. rawLen is the uncompressed length recorded alongside
// the block; the output must match it exactly. rawLen is checked against MaxRawLen
// before anything is allocated.
func Decompress(kind Kind, data []byte, rawLen int) ([]byte, error) {
	if kind.Valid() && (rawLen < 0 || uint64(rawLen) > MaxRawLen(kind, len(data))) {
		return nil, fmt.Errorf("%w: %d from %d %s bytes", ErrExpansion, rawLen, len(data), kind)
	}
	switch kind {
	case None:
		if len(data) != rawLen {
			return nil, fmt.Errorf("compress: raw length %d, want %d", len(data), rawLen)
		}
		return data, nil
	case LZ4:
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, want %d", n, rawLen)
		}
		return out, nil
	case Zstd:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(data, make([]byte, 0, rawLen))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) != rawLen {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, want %d", len(out), rawLen)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}
