package infra

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if _, err := NewRedisClient(context.Background(), ""); err == nil {
		t.Fatalf("expected an error for an empty url")
	}
	if _, err := NewRedisClient(context.Background(), "not-a-url"); err == nil {
		t.Fatalf("expected a parse error")
	}
}
