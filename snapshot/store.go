// Package snapshot persists whole idcache.Cache values by name.
//
// A snapshot is the cache's ordered value sequence, encoded with a codec, framed with
// the version it was saved under and written to a provider. Versions make writes CAS
// safe: observe Version before building a cache, pass it to Save, and the write is
// skipped if Invalidate ran in between. Load rejects (and deletes) anything stale,
// corrupt or undecodable, so a miss always means "rebuild".
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/exists-forall/id-cache"
	"github.com/exists-forall/id-cache/codec"
	"github.com/exists-forall/id-cache/internal/util"
	"github.com/exists-forall/id-cache/internal/wire"
	"github.com/exists-forall/id-cache/provider"
	"github.com/exists-forall/id-cache/versions"
)

// SetCostFunc computes the provider cost of a stored frame.
type SetCostFunc func(storageKey string, frame []byte) int64

// Options configure a Store. Namespace, Provider and Codec are required.
type Options[T any] struct {
	Namespace string // isolates keys, e.g. "app:prod:words"
	Provider  provider.Provider
	Codec     codec.Codec[[]T]

	Compression      Compression    // default CompressNone
	Logger           idcache.Logger // nil => NopLogger
	Hooks            idcache.Hooks  // nil => NopHooks
	TTL              time.Duration  // 0 => no expiry
	Versions         versions.Store // nil => versions.Local (in-process)
	CleanupInterval  time.Duration  // local versions sweep; 0 => 1h
	VersionRetention time.Duration  // local versions retention; 0 => 30d
	MaxPayload       int            // largest payload Load accepts, in bytes; 0 => unlimited
	Disabled         bool           // Load always misses, Save and Invalidate are no-ops
	LoadConcurrency  int            // LoadMany parallelism; 0 => 8
	ComputeSetCost   SetCostFunc    // default len(frame)
}

// Store saves and loads caches of type *idcache.Cache[I, T]. It is safe for concurrent use.
type Store[I idcache.ID, T comparable] struct {
	ns        string
	provider  provider.Provider
	codec     codec.Codec[[]T]
	codecName string
	manifests codec.Protobuf[*structpb.Struct]

	comp            Compression
	maxPayload      int
	log             idcache.Logger
	hooks           idcache.Hooks
	ttl             time.Duration
	vers            versions.Store
	enabled         bool
	loadConcurrency int
	computeSetCost  SetCostFunc

	loads singleflight.Group
	now   func() time.Time
}

type loaded[I idcache.ID, T comparable] struct {
	c  *idcache.Cache[I, T]
	ok bool
}

func New[I idcache.ID, T comparable](opts Options[T]) (*Store[I, T], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("idcache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("idcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("idcache: namespace is required")
	}
	if !opts.Compression.Valid() {
		return nil, fmt.Errorf("idcache: unknown compression %s", opts.Compression)
	}

	s := &Store[I, T]{
		ns:         opts.Namespace,
		provider:   opts.Provider,
		codec:      opts.Codec,
		codecName:  codec.NameOf(opts.Codec),
		manifests:  codec.NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} }),
		comp:       opts.Compression,
		maxPayload: opts.MaxPayload,
		ttl:        opts.TTL,
		enabled:    !opts.Disabled,
		now:        time.Now,
	}
	if opts.MaxPayload > 0 {
		s.codec = codec.LimitCodec[[]T]{Inner: opts.Codec, MaxDecode: opts.MaxPayload}
	}

	// defaults
	s.log = coalesce[idcache.Logger](opts.Logger, idcache.NopLogger{})
	s.hooks = coalesce[idcache.Hooks](opts.Hooks, idcache.NopHooks{})
	s.loadConcurrency = coalesce(opts.LoadConcurrency, defaultLoadConcurrency)
	if s.loadConcurrency < 0 {
		s.loadConcurrency = defaultLoadConcurrency
	}

	if opts.ComputeSetCost != nil {
		s.computeSetCost = opts.ComputeSetCost
	} else {
		s.computeSetCost = func(_ string, frame []byte) int64 { return int64(len(frame)) }
	}

	if opts.Versions != nil {
		s.vers = opts.Versions
	} else {
		sweep := coalesce(opts.CleanupInterval, defaultSweep)
		retention := coalesce(opts.VersionRetention, defaultVersionRetention)
		s.vers = versions.NewLocal(sweep, retention)
		if provider.IsShared(opts.Provider) {
			s.hooks.LocalVersionsShared()
			s.log.Warn("shared provider with in-process versions; replicas will not see each other's invalidations",
				idcache.Fields{"ns": s.ns})
		}
	}
	return s, nil
}

func (s *Store[I, T]) Enabled() bool { return s.enabled }

// Close closes the version store (best effort) and then the provider.
func (s *Store[I, T]) Close(ctx context.Context) error {
	if s.vers != nil {
		_ = s.vers.Close(ctx)
	}
	return s.provider.Close(ctx)
}

// Version returns the current version of name. Observe it before building the cache
// you intend to Save. A version store error is reported to hooks and reads as 0.
func (s *Store[I, T]) Version(ctx context.Context, name string) uint64 {
	k := s.snapKey(name)
	v, err := s.vers.Current(ctx, k)
	if err != nil {
		s.hooks.VersionReadError(1, err)
		s.log.Warn("version read error", idcache.Fields{"key": k, "err": err})
		return 0
	}
	return v
}

// Save writes c under name iff the current version still equals observed. A stale
// write is skipped and is not an error; so is a write the provider rejects.
func (s *Store[I, T]) Save(ctx context.Context, name string, c *idcache.Cache[I, T], observed uint64) error {
	if !s.enabled {
		return nil
	}
	if c == nil {
		return fmt.Errorf("idcache: save %q: nil cache", name)
	}
	if uint64(c.Len()) > math.MaxUint32 {
		return fmt.Errorf("idcache: save %q: %d values exceed the snapshot limit", name, c.Len())
	}

	k := s.snapKey(name)
	cur, err := s.vers.Current(ctx, k)
	if err != nil {
		s.hooks.VersionReadError(1, err)
		return fmt.Errorf("idcache: save %q: read version: %w", name, err)
	}
	if cur != observed {
		s.log.Debug("Save skipped (version mismatch)", idcache.Fields{"name": name, "observed": observed, "current": cur})
		return nil
	}

	payload, err := s.codec.Encode(c.Values())
	if err != nil {
		return fmt.Errorf("idcache: save %q: encode: %w", name, err)
	}
	frame, meta, err := wire.EncodeSnapshot(observed, uint32(c.Len()), s.comp, payload)
	if err != nil {
		return fmt.Errorf("idcache: save %q: %w", name, err)
	}

	ok, err := s.provider.Set(ctx, k, frame, s.computeSetCost(k, frame), s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.hooks.ProviderSetRejected(k)
		s.log.Debug("Save rejected by provider (pressure)", idcache.Fields{"name": name})
		return nil
	}

	m := Manifest{
		Name:         name,
		Version:      observed,
		Count:        c.Len(),
		Codec:        s.codecName,
		Compression:  meta.Compression,
		PayloadBytes: len(payload),
		StoredBytes:  len(frame),
		Checksum:     meta.Checksum,
		SavedAt:      s.now(),
	}
	// the manifest is advisory; a failed write only costs Stat a miss
	if err := s.writeManifest(ctx, m); err != nil {
		s.log.Warn("manifest write failed", idcache.Fields{"name": name, "err": err})
	}
	return nil
}

func (s *Store[I, T]) writeManifest(ctx context.Context, m Manifest) error {
	st, err := m.toStruct()
	if err != nil {
		return err
	}
	b, err := s.manifests.Encode(st)
	if err != nil {
		return err
	}
	mk := s.manifestKey(m.Name)
	_, err = s.provider.Set(ctx, mk, b, s.computeSetCost(mk, b), s.ttl)
	return err
}

// Load returns the cache saved under name. ok=false means there is no usable snapshot:
// missing, stale or damaged entries are deleted and reported as a miss. Concurrent
// loads of one name share a single fetch; every caller gets its own copy.
//
// The shared fetch is detached from ctx cancellation so one caller giving up does not
// fail the others; a caller whose ctx is done returns ctx.Err() without waiting.
func (s *Store[I, T]) Load(ctx context.Context, name string) (*idcache.Cache[I, T], bool, error) {
	if !s.enabled {
		return nil, false, nil
	}
	k := s.snapKey(name)
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(k, func() (any, error) {
		c, ok, err := s.load(fetchCtx, name, k, s.currentOne)
		return loaded[I, T]{c: c, ok: ok}, err
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		r := res.Val.(loaded[I, T])
		if !r.ok {
			return nil, false, nil
		}
		return r.c.Clone(), true, nil
	}
}

// versionOf resolves the current version of a storage key during a load.
type versionOf func(ctx context.Context, k string) (uint64, error)

func (s *Store[I, T]) currentOne(ctx context.Context, k string) (uint64, error) {
	v, err := s.vers.Current(ctx, k)
	if err != nil {
		s.hooks.VersionReadError(1, err)
	}
	return v, err
}

func (s *Store[I, T]) load(ctx context.Context, name, k string, current versionOf) (*idcache.Cache[I, T], bool, error) {
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return nil, false, err
	}
	snap, err := wire.DecodeSnapshot(raw, s.maxPayload)
	if err != nil {
		s.heal(ctx, name, "corrupt")
		return nil, false, nil
	}

	cur, err := current(ctx, k)
	if err != nil {
		// transient; keep the entry
		return nil, false, fmt.Errorf("idcache: load %q: read version: %w", name, err)
	}
	switch {
	case snap.Gen < cur:
		s.heal(ctx, name, "version_mismatch")
		return nil, false, nil
	case snap.Gen > cur:
		// written after the version was read; not ours to delete
		return nil, false, nil
	}

	values, err := s.codec.Decode(snap.Payload)
	if err != nil {
		s.heal(ctx, name, "decode")
		return nil, false, nil
	}
	if uint64(len(values)) != uint64(snap.Count) {
		s.heal(ctx, name, "corrupt")
		return nil, false, nil
	}
	c, err := idcache.FromValues[I, T](values)
	if err != nil {
		reason := "corrupt"
		if errors.Is(err, idcache.ErrDuplicateValue) {
			reason = "duplicate"
		}
		s.heal(ctx, name, reason)
		return nil, false, nil
	}
	return c, true, nil
}

// heal deletes a rejected snapshot together with its manifest.
func (s *Store[I, T]) heal(ctx context.Context, name, reason string) {
	k := s.snapKey(name)
	_ = s.provider.Del(ctx, k)
	_ = s.provider.Del(ctx, s.manifestKey(name))
	s.hooks.SelfHeal(k, reason)
	s.log.Debug("snapshot self-healed", idcache.Fields{"name": name, "reason": reason})
}

// LoadMany reads the versions of all names in one batch, then fetches and decodes the
// snapshots in parallel, at most LoadConcurrency at a time. Names without a usable
// snapshot are returned in missing, in input order. The first provider or version
// store error aborts the batch.
func (s *Store[I, T]) LoadMany(ctx context.Context, names []string) (map[string]*idcache.Cache[I, T], []string, error) {
	out := make(map[string]*idcache.Cache[I, T], len(names))
	if !s.enabled {
		return out, slices.Clone(names), nil
	}
	if len(names) == 0 {
		return out, nil, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.snapKey(name)
	}
	vers, err := s.vers.CurrentMany(ctx, keys)
	if err != nil {
		s.hooks.VersionReadError(len(keys), err)
		return nil, nil, fmt.Errorf("idcache: load many: read versions: %w", err)
	}
	batch := func(_ context.Context, k string) (uint64, error) { return vers[k], nil }

	found := make([]*idcache.Cache[I, T], len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.loadConcurrency)
	for i, name := range names {
		g.Go(func() error {
			c, ok, err := s.load(gctx, name, keys[i], batch)
			if err != nil {
				return err
			}
			if ok {
				found[i] = c
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var missing []string
	for i, name := range names {
		if found[i] != nil {
			out[name] = found[i]
		} else {
			missing = append(missing, name)
		}
	}
	return out, missing, nil
}

// Stat returns the manifest of the snapshot saved under name without fetching its
// payload. A manifest from an older version is deleted and reported as a miss.
func (s *Store[I, T]) Stat(ctx context.Context, name string) (Manifest, bool, error) {
	if !s.enabled {
		return Manifest{}, false, nil
	}
	mk := s.manifestKey(name)
	raw, ok, err := s.provider.Get(ctx, mk)
	if err != nil || !ok {
		return Manifest{}, false, err
	}

	st, err := s.manifests.Decode(raw)
	if err != nil {
		s.healManifest(ctx, mk, "decode")
		return Manifest{}, false, nil
	}
	m, err := manifestFromStruct(st)
	if err != nil || m.Name != name {
		s.healManifest(ctx, mk, "corrupt")
		return Manifest{}, false, nil
	}

	cur, err := s.vers.Current(ctx, s.snapKey(name))
	if err != nil {
		s.hooks.VersionReadError(1, err)
		return Manifest{}, false, fmt.Errorf("idcache: stat %q: read version: %w", name, err)
	}
	if m.Version != cur {
		s.healManifest(ctx, mk, "version_mismatch")
		return Manifest{}, false, nil
	}
	return m, true, nil
}

func (s *Store[I, T]) healManifest(ctx context.Context, mk, reason string) {
	_ = s.provider.Del(ctx, mk)
	s.hooks.SelfHeal(mk, reason)
}

// Invalidate bumps the version of name and deletes its snapshot. Either step alone is
// enough to stop the old snapshot from loading, so an error is returned only when both fail.
func (s *Store[I, T]) Invalidate(ctx context.Context, name string) error {
	if !s.enabled {
		return nil
	}
	k := s.snapKey(name)
	newVer, bumpErr := s.vers.Bump(ctx, k)
	if bumpErr != nil {
		s.hooks.VersionBumpError(k, bumpErr)
		s.log.Error("version bump error", idcache.Fields{"key": k, "err": bumpErr})
	}
	s.loads.Forget(k)

	delErr := errors.Join(s.provider.Del(ctx, k), s.provider.Del(ctx, s.manifestKey(name)))
	if bumpErr != nil && delErr != nil {
		s.hooks.InvalidateOutage(name, bumpErr, delErr)
		return &idcache.InvalidateError{Name: name, BumpErr: bumpErr, DelErr: delErr}
	}
	s.log.Debug("invalidated snapshot (bumped version + deleted)", idcache.Fields{"name": name, "version": newVer})
	return nil
}

func (s *Store[I, T]) snapKey(name string) string     { return util.Key("snap", s.ns, name) }
func (s *Store[I, T]) manifestKey(name string) string { return util.Key("manifest", s.ns, name) }
