package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_SetMGetDel(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if err := c.Set(ctx, "jpmesh:tokyo:1km:53394611:l=0", []byte(`{"a":1}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.MGet(ctx, []string{"jpmesh:tokyo:1km:53394611:l=0", "missing"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if string(got["jpmesh:tokyo:1km:53394611:l=0"]) != `{"a":1}` {
		t.Fatalf("unexpected value map: %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Fatalf("missing key must be absent, got %v", got)
	}

	if err := c.Del(ctx, "jpmesh:tokyo:1km:53394611:l=0"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	got, err = c.MGet(ctx, []string{"jpmesh:tokyo:1km:53394611:l=0"})
	if err != nil {
		t.Fatalf("MGet after Del: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map after delete, got %v", got)
	}
}

func TestClient_MSetWithTTL(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	kv := map[string][]byte{
		"k1": []byte("v1"),
		"k2": []byte("v2"),
	}
	if err := c.MSetWithTTL(ctx, kv, time.Minute); err != nil {
		t.Fatalf("MSetWithTTL: %v", err)
	}

	got, err := c.MGet(ctx, []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both keys, got %v", got)
	}

	mr.FastForward(2 * time.Minute)
	got, err = c.MGet(ctx, []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("MGet after expiry: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected expired keys, got %v", got)
	}
}

func TestClient_EmptyAddr(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
