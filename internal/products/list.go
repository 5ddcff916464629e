package products

import (
	"github.com/localbasket/localbasket-backend/pkg/pagination"
)

// Sort orders supported by the public list endpoint.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ListFilters describe the filter knobs for the browse endpoint.
type ListFilters struct {
	Category string `json:"category,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Query    string `json:"q,omitempty"`
}

// ListInput captures the inputs needed to paginate and filter listings.
type ListInput struct {
	Filters          ListFilters
	Sort             string
	Pagination       pagination.Params
	IncludeCollected bool
}

// ListResult is one page of listings plus the cursor for the next page.
type ListResult struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
