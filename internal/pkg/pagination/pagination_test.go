package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNormalizes(t *testing.T) {
	p := New(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = New(3, 500)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 2*MaxLimit, p.Offset)
}

func TestClampToLastPage(t *testing.T) {
	p := New(9, 10)
	p.Clamp(25)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Offset)

	empty := New(4, 10)
	empty.Clamp(0)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 0, empty.Offset)
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(New(2, 10), 21)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}
