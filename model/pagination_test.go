package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationAssignDefault(t *testing.T) {
	cases := []struct {
		name   string
		in     Pagination
		limit  uint64
		offset uint64
	}{
		{name: "empty", in: Pagination{}, limit: DefaultPageLimit},
		{name: "explicit limit", in: Pagination{Limit: 25}, limit: 25},
		{name: "limit is capped", in: Pagination{Limit: 1000000}, limit: MaxPageLimit},
		{name: "page uses the capped limit", in: Pagination{Limit: 500, Page: 3}, limit: MaxPageLimit, offset: 2 * MaxPageLimit},
		{name: "page", in: Pagination{Limit: 5, Page: 2}, limit: 5, offset: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.in
			p.AssignDefault()
			assert.Equal(t, tc.limit, p.Limit)
			assert.Equal(t, tc.offset, p.Offset)
		})
	}
}

func TestPaginationResponse(t *testing.T) {
	page := PaginationResponse([]int{1, 2, 3}, Pagination{Limit: 2, Offset: 2})
	assert.Equal(t, []int{1, 2}, page.Data)
	assert.True(t, page.Metadata.HasMore)
	assert.Equal(t, uint64(2), page.Metadata.CurrentPage)

	empty := PaginationResponse[int](nil, Pagination{Limit: 2})
	assert.Equal(t, []int{}, empty.Data)
	assert.False(t, empty.Metadata.HasMore)
}
