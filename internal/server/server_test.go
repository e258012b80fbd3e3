package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestShutdownClosesInReverseOrder(t *testing.T) {
	sm := NewShutdownManager(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)

	var order []string
	record := func(name string, err error) Resource {
		return NewCustomResource(name, func(context.Context) error {
			order = append(order, name)
			return err
		})
	}
	sm.Register(record("database", nil))
	sm.Register(record("redis", errors.New("already closed")))
	sm.Register(record("http-server", nil))

	err := sm.Shutdown(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis: already closed") {
		t.Fatalf("expected the redis error to be reported, got %v", err)
	}
	want := []string{"http-server", "redis", "database"}
	if len(order) != len(want) {
		t.Fatalf("closed %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("closed %v, want %v", order, want)
		}
	}

	order = nil
	if err := sm.Shutdown(context.Background()); err != nil || len(order) != 0 {
		t.Errorf("second shutdown should be a no-op, got %v %v", err, order)
	}
}
