package response

import "github.com/user/reality-watch/internal/entity"

// ListingResponse is a DTO for one stored listing, mirroring entity.Listing.
type ListingResponse struct {
	ID       *string `json:"id"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Price    string  `json:"price"`
	Time     string  `json:"time"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FromListings converts table rows into response DTOs, keeping order.
func FromListings(rows []entity.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(rows))
	for _, l := range rows {
		out = append(out, ListingResponse{
			ID:       l.ID,
			Title:    l.Title,
			Location: l.Region,
			Price:    l.Price,
			Time:     l.RawTime,
		})
	}
	return out
}
