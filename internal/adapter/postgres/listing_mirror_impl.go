package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
)

const createListingsTable = `
	CREATE TABLE IF NOT EXISTS listings (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		price      TEXT NOT NULL,
		location   TEXT NOT NULL,
		raw_time   TEXT NOT NULL,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// The first stored version of a listing wins, as in the CSV table.
const insertListing = `
	INSERT INTO listings (id, title, price, location, raw_time)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING;
`

// ListingMirrorImpl mirrors newly added listings into PostgreSQL.
type ListingMirrorImpl struct {
	db *pgxpool.Pool
}

// NewListingMirror connects to connStr and makes sure the listings table exists.
func NewListingMirror(ctx context.Context, connStr string) (*ListingMirrorImpl, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	if _, err := db.Exec(ctx, createListingsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create listings table: %w", err)
	}
	return &ListingMirrorImpl{db: db}, nil
}

var _ repository.ListingSink = (*ListingMirrorImpl)(nil)

func (r *ListingMirrorImpl) Name() string { return "postgres" }

// Publish inserts listings in one transaction. Rows without an id have no
// key in the mirror and are left out.
func (r *ListingMirrorImpl) Publish(ctx context.Context, listings []entity.Listing) error {
	rows := WithID(listings)
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, l := range rows {
		batch.Queue(insertListing, *l.ID, l.Title, l.Price, l.Region, l.RawTime)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert listings: %w", err)
	}
	return tx.Commit(ctx)
}

// Close releases the connection pool.
func (r *ListingMirrorImpl) Close() {
	r.db.Close()
}

// WithID returns the listings that carry an id, in order.
func WithID(listings []entity.Listing) []entity.Listing {
	out := make([]entity.Listing, 0, len(listings))
	for _, l := range listings {
		if l.HasID() {
			out = append(out, l)
		}
	}
	return out
}
