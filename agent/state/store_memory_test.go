package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	rec := NewFactRecord("s1", time.Now())
	rec.Merge(FactDelta{Model: "WDT780SAEM1", Symptoms: []string{"Leaking"}})

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ProductModel != "WDT780SAEM1" {
		t.Fatalf("unexpected model: %s", got.ProductModel)
	}
	if len(got.Symptoms) != 1 || got.Symptoms[0] != "Leaking" {
		t.Fatalf("unexpected symptoms: %#v", got.Symptoms)
	}
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	_, err := store.Load(context.Background(), "nope")
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestMemoryStoreDetachesRecords(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	rec := NewFactRecord("s1", time.Now())
	rec.Merge(FactDelta{Model: "WDT780SAEM1"})
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the caller's record after Save must not change the store.
	rec.Merge(FactDelta{Model: "WRF535SWHZ"})

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ProductModel != "WDT780SAEM1" {
		t.Fatalf("stored record shared with caller: %s", got.ProductModel)
	}

	// Mutating a loaded record must not change the store either.
	got.Merge(FactDelta{Part: "PS11752778"})
	again, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.PartNumber != "" {
		t.Fatalf("loaded record shared with store: %s", again.PartNumber)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, NewFactRecord("s1", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreRejectsBadInput(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, nil); !errors.Is(err, ErrNilFactRecord) {
		t.Fatalf("expected ErrNilFactRecord, got %v", err)
	}
	if err := store.Save(ctx, NewFactRecord("  ", time.Now())); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := store.Load(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}
