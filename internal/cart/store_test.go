package cart

import (
	"reflect"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryKV())

	items := []LineItem{
		{ProductID: "1", Name: "Camiseta", Price: 68000, Quantity: 2, Color: "Negro", Size: "M"},
		{ProductID: "3", Name: "Short", Price: 20000, Quantity: 1, Brand: "Nike"},
	}
	store.Set(items)

	got := store.Get()
	if !reflect.DeepEqual(got, items) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, items)
	}
}

func TestStoreRoundTripEmptyList(t *testing.T) {
	store := NewStore(NewMemoryKV())
	store.Set([]LineItem{})
	got := store.Get()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestStoreGetWithoutPersistedValue(t *testing.T) {
	store := NewStore(NewMemoryKV())
	if got := store.Get(); got == nil || len(got) != 0 {
		t.Fatalf("fresh store must return an empty list, got %#v", got)
	}
}

func TestStoreGetDiscardsCorruptPayload(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(StorageKey, "{not json")
	store := NewStore(kv)
	if got := store.Get(); len(got) != 0 {
		t.Fatalf("corrupt payload must read as empty, got %#v", got)
	}
}

func TestStoreLastWriterWins(t *testing.T) {
	kv := NewMemoryKV()
	a := NewStore(kv)
	b := NewStore(kv)

	a.Set([]LineItem{{ProductID: "1", Quantity: 1}})
	b.Set([]LineItem{{ProductID: "2", Quantity: 2}})

	got := a.Get()
	if len(got) != 1 || got[0].ProductID != "2" {
		t.Fatalf("expected last write to win, got %+v", got)
	}
}

func TestStoreClearEqualsSetEmpty(t *testing.T) {
	store := NewStore(NewMemoryKV())
	store.Set([]LineItem{{ProductID: "1", Quantity: 3}})
	store.Clear()
	if got := store.Get(); len(got) != 0 {
		t.Fatalf("Clear must behave like Set(empty), got %#v", got)
	}
}
