package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
)

func strp(s string) *string { return &s }

// fakeFetcher serves page content by URL and records the order of requests.
type fakeFetcher struct {
	pages    map[string]string
	requests []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.requests = append(f.requests, url)
	content, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("%w: status 503 for %s", repository.ErrFetch, url)
	}
	return content, nil
}

// fakeExtractor returns the cards registered for a page content key.
type fakeExtractor struct {
	cards map[string][]entity.RawListing
	err   error
}

func (f *fakeExtractor) Extract(content string) ([]entity.RawListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cards[content], nil
}

type memoryListingRepo struct {
	rows     []entity.Listing
	loadErr  error
	saveErr  error
	lockErr  error
	saves    int
	locked   bool
	unlocked bool
}

func (r *memoryListingRepo) Load(context.Context) ([]entity.Listing, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]entity.Listing(nil), r.rows...), nil
}

func (r *memoryListingRepo) Replace(_ context.Context, rows []entity.Listing) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.rows = append([]entity.Listing(nil), rows...)
	return nil
}

func (r *memoryListingRepo) Lock(context.Context) (func(), error) {
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	r.locked = true
	return func() { r.unlocked = true }, nil
}

type recordingSink struct {
	name      string
	err       error
	published [][]entity.Listing
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(_ context.Context, listings []entity.Listing) error {
	s.published = append(s.published, listings)
	return s.err
}

type stubCollector struct {
	listings []entity.Listing
	regions  []string
}

func (c *stubCollector) Collect(_ context.Context, regions []string) []entity.Listing {
	c.regions = regions
	return c.listings
}

var errDisk = errors.New("disk full")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func listing(id, title string) entity.Listing {
	l := entity.Listing{Title: title, Price: "1 000 Kč", Region: "ostrava", RawTime: "14:30"}
	if id != "" {
		l.ID = strp(id)
	}
	return l
}
