package snapshot

import (
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Manifest describes a stored snapshot. It is written beside the payload so callers
// can inspect a snapshot without fetching and decoding the value sequence.
type Manifest struct {
	Name         string
	Version      uint64
	Count        int
	Codec        string
	Compression  Compression
	PayloadBytes int // encoded value sequence, before compression
	StoredBytes  int // full frame as handed to the provider
	Checksum     uint32
	SavedAt      time.Time
}

// Versions are kept as decimal strings: structpb numbers are float64.
func (m Manifest) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"name":          m.Name,
		"version":       strconv.FormatUint(m.Version, 10),
		"count":         m.Count,
		"codec":         m.Codec,
		"compression":   m.Compression.String(),
		"payload_bytes": m.PayloadBytes,
		"stored_bytes":  m.StoredBytes,
		"checksum":      m.Checksum,
		"saved_at":      m.SavedAt.UTC().Format(time.RFC3339Nano),
	})
}

func manifestFromStruct(s *structpb.Struct) (Manifest, error) {
	f := s.GetFields()
	str := func(k string) (string, error) {
		v, ok := f[k].GetKind().(*structpb.Value_StringValue)
		if !ok {
			return "", fmt.Errorf("manifest: field %q is not a string", k)
		}
		return v.StringValue, nil
	}
	num := func(k string) (int, error) {
		v, ok := f[k].GetKind().(*structpb.Value_NumberValue)
		if !ok || v.NumberValue < 0 {
			return 0, fmt.Errorf("manifest: field %q is not a non-negative number", k)
		}
		return int(v.NumberValue), nil
	}

	var (
		m   Manifest
		err error
		s2  string
	)
	if m.Name, err = str("name"); err != nil {
		return Manifest{}, err
	}
	if s2, err = str("version"); err != nil {
		return Manifest{}, err
	}
	if m.Version, err = strconv.ParseUint(s2, 10, 64); err != nil {
		return Manifest{}, fmt.Errorf("manifest: version: %w", err)
	}
	if m.Count, err = num("count"); err != nil {
		return Manifest{}, err
	}
	if m.Codec, err = str("codec"); err != nil {
		return Manifest{}, err
	}
	if s2, err = str("compression"); err != nil {
		return Manifest{}, err
	}
	if m.Compression, err = parseCompression(s2); err != nil {
		return Manifest{}, err
	}
	if m.PayloadBytes, err = num("payload_bytes"); err != nil {
		return Manifest{}, err
	}
	if m.StoredBytes, err = num("stored_bytes"); err != nil {
		return Manifest{}, err
	}
	sum, err := num("checksum")
	if err != nil {
		return Manifest{}, err
	}
	m.Checksum = uint32(sum)
	if s2, err = str("saved_at"); err != nil {
		return Manifest{}, err
	}
	if m.SavedAt, err = time.Parse(time.RFC3339Nano, s2); err != nil {
		return Manifest{}, fmt.Errorf("manifest: saved_at: %w", err)
	}
	return m, nil
}
