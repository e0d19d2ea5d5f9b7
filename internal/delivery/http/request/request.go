package request

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/user/reality-watch/internal/usecase"
)

// ListListingsRequest holds the query parameters of GET /api/listings.
type ListListingsRequest struct {
	Region string
	Limit  int // 0 means all rows
}

// ParseListListings reads region and limit from the query string.
func ParseListListings(q url.Values) (ListListingsRequest, error) {
	req := ListListingsRequest{Region: strings.TrimSpace(q.Get("region"))}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return req, usecase.ErrInvalidLimit
		}
		req.Limit = n
	}
	return req, nil
}
