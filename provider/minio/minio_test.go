package minio

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestNewValidates(t *testing.T) {
	if _, err := New(Config{Bucket: "b"}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("want ErrNilClient, got %v", err)
	}
	if _, err := New(Config{Client: &minio.Client{}}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestKeyJoinsPrefix(t *testing.T) {
	p := &Provider{prefix: "idcache/"}
	if got := p.key("snap:words:main"); got != "idcache/snap:words:main" {
		t.Fatalf("key=%q", got)
	}
	bare := &Provider{}
	if got := bare.key("snap:words:main"); got != "snap:words:main" {
		t.Fatalf("key=%q", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}) {
		t.Fatalf("NoSuchKey should be a miss")
	}
	if isNotFound(minio.ErrorResponse{Code: "AccessDenied"}) {
		t.Fatalf("AccessDenied is not a miss")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatalf("plain error is not a miss")
	}
	if !(&Provider{}).Shared() {
		t.Fatalf("object store should be shared")
	}
}
