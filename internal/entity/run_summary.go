package entity

// RunSummary describes the outcome of a single collection run.
type RunSummary struct {
	Collected int // listings that passed the recency filter
	Added     int // listings that were not yet in the table
	Total     int // table rows after the merge
}
