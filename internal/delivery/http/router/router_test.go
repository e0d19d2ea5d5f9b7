package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/delivery/http/handler"
	"github.com/user/reality-watch/internal/delivery/http/response"
	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/usecase"
	"github.com/user/reality-watch/pkg/metrics"
)

type staticRepo struct {
	rows []entity.Listing
	err  error
}

func (r staticRepo) Load(context.Context) ([]entity.Listing, error) { return r.rows, r.err }
func (staticRepo) Replace(context.Context, []entity.Listing) error  { return nil }
func (staticRepo) Lock(context.Context) (func(), error)             { return func() {}, nil }

func newTestServer(t *testing.T, repo staticRepo) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(nil)
	h := handler.NewHandler(usecase.NewListingQuery(repo), zap.NewNop())
	srv := httptest.NewServer(New(h, m, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, m
}

func strp(s string) *string { return &s }

func fixtureRows() []entity.Listing {
	return []entity.Listing{
		{ID: strp("1"), Title: "Byt", Price: "1 Kč", Region: "ostrava", RawTime: "14:30"},
		{ID: nil, Title: "Chata", Price: "2 Kč", Region: "karvina", RawTime: "15:00"},
		{ID: strp("3"), Title: "Dům", Price: "3 Kč", Region: "ostrava", RawTime: "15:10"},
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, staticRepo{})

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v, want 200 ok", resp.StatusCode, body)
	}
}

func TestListListings(t *testing.T) {
	srv, _ := newTestServer(t, staticRepo{rows: fixtureRows()})

	tests := []struct {
		query      string
		wantTitles []string
	}{
		{query: "", wantTitles: []string{"Byt", "Chata", "Dům"}},
		{query: "?region=ostrava", wantTitles: []string{"Byt", "Dům"}},
		{query: "?limit=1", wantTitles: []string{"Byt"}},
		{query: "?region=brno", wantTitles: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/listings" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}

			var got []response.ListingResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != len(tt.wantTitles) {
				t.Fatalf("got %d listings, want %d", len(got), len(tt.wantTitles))
			}
			for i, title := range tt.wantTitles {
				if got[i].Title != title {
					t.Errorf("listing %d title = %q, want %q", i, got[i].Title, title)
				}
			}
		})
	}
}

func TestListListingsErrors(t *testing.T) {
	srv, _ := newTestServer(t, staticRepo{rows: fixtureRows()})
	for _, limit := range []string{"abc", "0", "-2"} {
		resp, err := http.Get(srv.URL + "/api/listings?limit=" + limit)
		if err != nil {
			t.Fatal(err)
		}
		var body response.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest || body.Error != usecase.ErrInvalidLimit.Error() {
			t.Errorf("limit=%s: %d %q, want 400 %q", limit, resp.StatusCode, body.Error, usecase.ErrInvalidLimit)
		}
	}

	broken, _ := newTestServer(t, staticRepo{err: errors.New("corrupt table")})
	resp, err := http.Get(broken.URL + "/api/listings")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("storage failure status = %d, want 500", resp.StatusCode)
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	srv, _ := newTestServer(t, staticRepo{})

	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL + "/api/health")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	want := `http_requests_total{method="GET",path="/api/health",status="200"} 2`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q", want)
	}
}
