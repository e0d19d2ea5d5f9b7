package request

import (
	"errors"
	"net/url"
	"testing"

	"github.com/user/reality-watch/internal/usecase"
)

func TestParseListListings(t *testing.T) {
	tests := []struct {
		query   string
		want    ListListingsRequest
		wantErr error
	}{
		{query: "", want: ListListingsRequest{}},
		{query: "region=ostrava", want: ListListingsRequest{Region: "ostrava"}},
		{query: "region=karvina&limit=5", want: ListListingsRequest{Region: "karvina", Limit: 5}},
		{query: "limit=0", wantErr: usecase.ErrInvalidLimit},
		{query: "limit=-3", wantErr: usecase.ErrInvalidLimit},
		{query: "limit=ten", wantErr: usecase.ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseListListings(q)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseListListings(%q) error = %v, want %v", tt.query, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseListListings(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}
