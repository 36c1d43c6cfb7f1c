package collections_test

import (
	"testing"

	"github.com/alkime/stretch/pkg/collections"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	Number int
	Text   string
}

func TestApply(t *testing.T) {
	steps := []step{{Number: 3, Text: "c"}, {Number: 1, Text: "a"}}

	numbers := collections.Apply(steps, func(s step) int { return s.Number })

	require.Equal(t, []int{3, 1}, numbers, "order is preserved")
	assert.Empty(t, collections.Apply([]step{}, func(s step) int { return s.Number }))
}

func TestFilter(t *testing.T) {
	ints := []int{1, 2, 3, 4, 5}

	even := collections.Filter(ints, func(i int) bool { return i%2 == 0 })

	assert.Equal(t, []int{2, 4}, even)
	assert.Nil(t, collections.Filter(ints, func(int) bool { return false }))
}

func TestFind(t *testing.T) {
	steps := []step{{Number: 7, Text: "first"}, {Number: 7, Text: "second"}}

	got, ok := collections.Find(steps, func(s step) bool { return s.Number == 7 })
	require.True(t, ok)
	assert.Equal(t, "first", got.Text)

	_, ok = collections.Find(steps, func(s step) bool { return s.Number == 1 })
	assert.False(t, ok)
}
