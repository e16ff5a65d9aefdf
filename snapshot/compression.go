package snapshot

import (
	"fmt"

	"github.com/exists-forall/id-cache/internal/compress"
)

// Compression selects the block compression applied to snapshot payloads.
// Payloads that do not shrink are stored uncompressed regardless.
type Compression = compress.Kind

const (
	CompressNone Compression = compress.None
	CompressLZ4  Compression = compress.LZ4
	CompressZstd Compression = compress.Zstd
)

func parseCompression(s string) (Compression, error) {
	for _, k := range []Compression{CompressNone, CompressLZ4, CompressZstd} {
		if k.String() == s {
			return k, nil
		}
	}
	return CompressNone, fmt.Errorf("manifest: unknown compression %q", s)
}
