package redis

import (
	"context"
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/exists-forall/id-cache/provider"
)

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("err=%v", err)
	}
}

func TestSharedAndBorrowedClientClose(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	p, err := New(Config{Client: rdb})
	if err != nil {
		t.Fatal(err)
	}
	if !pr.IsShared(p) {
		t.Fatalf("redis provider must report shared")
	}
	// borrowed client stays open
	if err := p.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := rdb.Close(); err != nil {
		t.Fatalf("client was closed by a provider that does not own it: %v", err)
	}

	owned, _ := New(Config{Client: goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"}), CloseClient: true})
	for i := 0; i < 2; i++ {
		if err := owned.Close(context.Background()); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
}
