package versions

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeDDB struct {
	mu    sync.Mutex
	items map[string]uint64
	err   error
}

func (f *fakeDDB) pk(key map[string]types.AttributeValue) string {
	return key[ddbKeyAttr].(*types.AttributeValueMemberS).Value
}

func (f *fakeDDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.items[f.pk(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		ddbVersionAttr: &types.AttributeValueMemberN{Value: strconv.FormatUint(v, 10)},
	}}, nil
}

func (f *fakeDDB) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if *in.UpdateExpression != "ADD #v :one" {
		return nil, errors.New("unexpected update expression")
	}
	k := f.pk(in.Key)
	f.items[k]++
	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
		ddbVersionAttr: &types.AttributeValueMemberN{Value: strconv.FormatUint(f.items[k], 10)},
	}}, nil
}

func TestDynamoDBBumpAndCurrent(t *testing.T) {
	ctx := context.Background()
	f := &fakeDDB{items: make(map[string]uint64)}
	s := NewDynamoDB(f, "versions")

	if v, err := s.Current(ctx, "snap:a"); err != nil || v != 0 {
		t.Fatalf("Current=%d err=%v want 0", v, err)
	}
	for want := uint64(1); want <= 3; want++ {
		v, err := s.Bump(ctx, "snap:a")
		if err != nil || v != want {
			t.Fatalf("Bump=%d err=%v want %d", v, err, want)
		}
	}
	if _, ok := f.items["ver:snap:a"]; !ok {
		t.Fatalf("item key not prefixed: %v", f.items)
	}

	got, err := s.CurrentMany(ctx, []string{"snap:a", "snap:b"})
	if err != nil {
		t.Fatal(err)
	}
	if got["snap:a"] != 3 || got["snap:b"] != 0 {
		t.Fatalf("CurrentMany=%v", got)
	}
}

func TestDynamoDBErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("throttled")
	s := NewDynamoDB(&fakeDDB{items: map[string]uint64{}, err: boom}, "versions")

	if _, err := s.Current(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("Current err=%v", err)
	}
	if _, err := s.Bump(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("Bump err=%v", err)
	}
	if _, err := s.CurrentMany(ctx, []string{"k"}); !errors.Is(err, boom) {
		t.Fatalf("CurrentMany err=%v", err)
	}
}

func TestDDBVersionRejectsNonNumber(t *testing.T) {
	item := map[string]types.AttributeValue{ddbVersionAttr: &types.AttributeValueMemberS{Value: "x"}}
	if _, err := ddbVersion(item); err == nil {
		t.Fatalf("expected error for string attribute")
	}
}
