package domain

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPage caps how deep a car listing can page, keeping OFFSET small
	// and far from integer overflow.
	MaxPage = 10_000
)

// PaginationParams is a validated page request for the fleet listing.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds PaginationParams from the optional page and
// limit query values. Missing or non-positive values fall back to page 1 and
// DefaultPageLimit; larger values are clamped to MaxPage and MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of cars to skip for the SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages reports how many pages of p.Limit cars hold total cars.
func (p PaginationParams) TotalPages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
