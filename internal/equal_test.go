package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ x, y int }

type caseless string

func (c caseless) Equal(other any) bool {
	o, ok := other.(caseless)
	return ok && strings.EqualFold(string(c), string(o))
}

func TestSame(t *testing.T) {
	slice := []int{1, 2}
	m := map[string]int{"a": 1}
	p := &point{1, 2}

	assert.True(t, Same(1, 1))
	assert.False(t, Same(1, 2))
	assert.False(t, Same(1, int64(1)))
	assert.True(t, Same("a", "a"))
	assert.True(t, Same(nil, nil))
	assert.False(t, Same(nil, 0))
	assert.True(t, Same(point{1, 2}, point{1, 2}))
	assert.True(t, Same(p, p))
	assert.False(t, Same(p, &point{1, 2}))
	assert.True(t, Same(slice, slice))
	assert.False(t, Same(slice, []int{1, 2}))
	assert.False(t, Same(slice, slice[:1]))
	assert.True(t, Same(m, m))
	assert.False(t, Same(m, map[string]int{"a": 1}))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]int{1, 2}, []int{1, 2}))
	assert.False(t, Equal([]int{1, 2}, []int{2, 1}))
	assert.True(t, Equal(map[string]int{"a": 1}, map[string]int{"a": 1}))
	assert.True(t, Equal(&point{1, 2}, &point{1, 2}))
	assert.False(t, Equal(&point{1, 2}, &point{2, 1}))
	assert.True(t, Equal(caseless("Hello"), caseless("hello")))
	assert.False(t, Equal(caseless("Hello"), "hello"))
}

func TestIsNil(t *testing.T) {
	var p *point
	var m map[string]int

	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(p))
	assert.True(t, IsNil(m))
	assert.False(t, IsNil(0))
	assert.False(t, IsNil(&point{}))
}
