package entity

// RawListing is one listing card as extracted from a region page. A nil field
// means the element was absent from the card's markup.
type RawListing struct {
	Title   *string
	Price   *string
	Href    *string
	RawTime *string
	Region  string
}

// Listing mirrors one row of the persisted listings table.
type Listing struct {
	ID      *string `json:"id"` // nil when the id could not be derived from the href
	Title   string  `json:"title"`
	Price   string  `json:"price"`
	Region  string  `json:"location"`
	RawTime string  `json:"time"` // timestamp text as shown on the site
}

// HasID reports whether the listing carries a usable dedup key.
func (l Listing) HasID() bool {
	return l.ID != nil && *l.ID != ""
}
