package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Normalized(t *testing.T) {
	tests := []struct {
		name         string
		in           Filter
		page, size   int
		expectOffset int
	}{
		{"zero value lists everything", Filter{}, 1, 0, 0},
		{"negative page", Filter{Page: -2, PageSize: 10}, 1, 10, 0},
		{"third page", Filter{Page: 3, PageSize: 25}, 3, 25, 50},
		{"oversized page", Filter{Page: 2, PageSize: 1000}, 2, MaxPageSize, MaxPageSize},
		{"negative size", Filter{Page: 4, PageSize: -1}, 4, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.size, got.PageSize)
			assert.Equal(t, tt.expectOffset, got.Offset())
		})
	}
}

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, f, f.Normalized())
	assert.Equal(t, 0, f.Offset())
	assert.Equal(t, "created_at", f.OrderBy)
}
