package redis

import (
	"context"
	"testing"

	"github.com/user/reality-watch/internal/entity"
)

func TestEncodeListings(t *testing.T) {
	id := "123"
	values, err := EncodeListings([]entity.Listing{
		{ID: &id, Title: "Byt", Price: "1 Kč", Region: "ostrava", RawTime: "14:30"},
		{Title: "Bez id", Price: "2 Kč", Region: "karvina", RawTime: "15:00"},
	})
	if err != nil {
		t.Fatalf("EncodeListings() error = %v", err)
	}
	want := []string{
		`{"id":"123","title":"Byt","price":"1 Kč","location":"ostrava","time":"14:30"}`,
		`{"id":null,"title":"Bez id","price":"2 Kč","location":"karvina","time":"15:00"}`,
	}
	if len(values) != len(want) {
		t.Fatalf("EncodeListings() returned %d values, want %d", len(values), len(want))
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("value %d = %v, want %s", i, values[i], want[i])
		}
	}
}

func TestPublishNothing(t *testing.T) {
	q := &NewListingsQueueImpl{key: NewListingsKey}
	if err := q.Publish(context.Background(), nil); err != nil {
		t.Errorf("Publish(nil) error = %v", err)
	}
}
