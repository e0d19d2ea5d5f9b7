package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
)

// Header is the column order of the listings table.
var Header = []string{"title", "id", "location", "price", "time"}

// DefaultLockTTL is how old a lock file must be before it is taken over.
const DefaultLockTTL = 10 * time.Minute

// Store keeps the listings table in a CSV file. An empty id cell stands for
// a listing without an id.
type Store struct {
	path    string
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewStore creates a store for the table at path.
func NewStore(path string, lockTTL time.Duration, logger *zap.Logger) *Store {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &Store{path: path, lockTTL: lockTTL, logger: logger}
}

var _ repository.ListingRepository = (*Store)(nil)

// Path returns the location of the table file.
func (s *Store) Path() string { return s.path }

// Load reads every row of the table. A missing or empty file is an empty table.
func (s *Store) Load(_ context.Context) ([]entity.Listing, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", repository.ErrStorage, s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %w", repository.ErrStorage, s.path, err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", repository.ErrStorage, s.path, err)
	}

	var rows []entity.Listing
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", repository.ErrStorage, s.path, line, err)
		}
		rows = append(rows, cols.listing(rec))
	}
	return rows, nil
}

// Replace writes rows to a temporary file next to the table and renames it
// over the table, so readers see either the old or the new content.
func (s *Store) Replace(_ context.Context, rows []entity.Listing) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", repository.ErrStorage, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", repository.ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := writeRows(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", repository.ErrStorage, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", repository.ErrStorage, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", repository.ErrStorage, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", repository.ErrStorage, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", repository.ErrStorage, s.path, err)
	}

	s.logger.Debug("listings table written", zap.String("path", s.path), zap.Int("rows", len(rows)))
	return nil
}

func writeRows(w io.Writer, rows []entity.Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, l := range rows {
		id := ""
		if l.ID != nil {
			id = *l.ID
		}
		if err := cw.Write([]string{l.Title, id, l.Region, l.Price, l.RawTime}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// columns maps table columns to record positions; -1 marks an absent column.
type columns struct {
	title, id, location, price, time int
}

func columnIndex(header []string) (columns, error) {
	c := columns{-1, -1, -1, -1, -1}
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "title":
			c.title = i
		case "id":
			c.id = i
		case "location":
			c.location = i
		case "price":
			c.price = i
		case "time":
			c.time = i
		}
	}
	if c.id < 0 {
		return c, errors.New("table has no id column")
	}
	return c, nil
}

func (c columns) listing(rec []string) entity.Listing {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	l := entity.Listing{
		Title:   field(c.title),
		Region:  field(c.location),
		Price:   field(c.price),
		RawTime: field(c.time),
	}
	if id := field(c.id); id != "" {
		l.ID = &id
	}
	return l
}
