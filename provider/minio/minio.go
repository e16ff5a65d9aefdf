// Package minio stores snapshots as objects in MinIO or any S3-compatible store.
//
// Object stores have no per-object TTL; Set ignores ttl. Use bucket lifecycle rules
// when snapshots should expire.
package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	pr "github.com/exists-forall/id-cache/provider"
)

var ErrNilClient = errors.New("minio provider: nil client")

type Provider struct {
	client *minio.Client
	bucket string
	prefix string
}

var (
	_ pr.Provider = (*Provider)(nil)
	_ pr.Shared   = (*Provider)(nil)
)

type Config struct {
	Client *minio.Client
	Bucket string
	Prefix string // prepended to every key, e.g. "idcache/"
}

func New(cfg Config) (*Provider, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio provider: bucket is required")
	}
	return &Provider{client: cfg.Client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (p *Provider) key(k string) string {
	return path.Join(p.prefix, k)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := p.client.GetObject(ctx, p.bucket, p.key(key), minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer obj.Close()

	// GetObject is lazy; a missing object surfaces on first read.
	b, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	_, err := p.client.PutObject(ctx, p.bucket, p.key(key), bytes.NewReader(value), int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	err := p.client.RemoveObject(ctx, p.bucket, p.key(key), minio.RemoveObjectOptions{})
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

func (p *Provider) Shared() bool { return true }

func (p *Provider) Close(context.Context) error { return nil }
