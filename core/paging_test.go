package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageParams(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        PageParams
		wantOffset  int
	}{
		{name: "defaults", want: PageParams{Page: 1, Limit: DefaultLimit}},
		{name: "negative", page: -3, limit: -1, want: PageParams{Page: 1, Limit: DefaultLimit}},
		{name: "capped", page: 2, limit: 1000, want: PageParams{Page: 2, Limit: MaxLimit}, wantOffset: MaxLimit},
		{name: "third page", page: 3, limit: 20, want: PageParams{Page: 3, Limit: 20}, wantOffset: 40},
		{
			name:       "huge page",
			page:       math.MaxInt,
			limit:      MaxLimit,
			want:       PageParams{Page: MaxPage, Limit: MaxLimit},
			wantOffset: (MaxPage - 1) * MaxLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPageParams(tt.page, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOffset, got.Offset())
		})
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, 5, NewPageParams(2, 2))
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPage[int](nil, 0, NewPageParams(1, 10))
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestParseOrdering(t *testing.T) {
	assert.Nil(t, ParseOrdering(""))
	assert.Equal(t,
		[]DBOrdering{{Field: "nombre", Ascending: true}, {Field: "created_at", Ascending: false}},
		ParseOrdering("nombre, -created_at,"),
	)
	assert.Equal(t, "created_at DESC", DBOrdering{Field: "created_at"}.String())
}
