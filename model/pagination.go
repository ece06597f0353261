package model

type Pagination struct {
	Limit  uint64 `json:"limit" query:"limit"`
	Offset uint64 `json:"offset" query:"offset"`
	Page   uint64 `json:"page" query:"page"`
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// AssignDefault fills a missing limit, clamps it to MaxPageLimit and derives
// the offset from page when one is given.
func (p *Pagination) AssignDefault() {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Page > 0 {
		p.Offset = (p.Page - 1) * p.Limit
	}
}

type PagingWithMetadata[T any] struct {
	Data     []T      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

type Metadata struct {
	Limit       uint64 `json:"limit"`
	Offset      uint64 `json:"offset"`
	CurrentPage uint64 `json:"currentPage"`
	HasMore     bool   `json:"hasMore"`
}

// PaginationResponse expects data to hold up to Limit+1 rows; the extra row
// only signals that another page exists.
func PaginationResponse[T any](data []T, paging Pagination) PagingWithMetadata[T] {
	hasMore := uint64(len(data)) > paging.Limit
	if hasMore {
		data = data[:paging.Limit]
	}
	if data == nil {
		data = []T{}
	}
	return PagingWithMetadata[T]{
		Data: data,
		Metadata: Metadata{
			Limit:       paging.Limit,
			Offset:      paging.Offset,
			CurrentPage: paging.Offset/paging.Limit + 1,
			HasMore:     hasMore,
		},
	}
}
