package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRanges(t *testing.T) {
	pages, err := ParsePageRanges("1,3:5,8")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3, 4, 7}, pages)
}

func TestParsePageRangesSinglePage(t *testing.T) {
	pages, err := ParsePageRanges("4")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, pages)
}

func TestParsePageRangesEmptyMeansAll(t *testing.T) {
	pages, err := ParsePageRanges("")
	require.NoError(t, err)
	assert.Nil(t, pages)

	pages, err = ParsePageRanges("   ")
	require.NoError(t, err)
	assert.Nil(t, pages)
}

func TestParsePageRangesDeduplicatesAndSorts(t *testing.T) {
	pages, err := ParsePageRanges("5,1:3,2")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 4}, pages)
}

func TestParsePageRangesRejectsBadInput(t *testing.T) {
	cases := []string{"0", "-1", "abc", "3:", ":4", "5:2", "1,,2"}
	for _, input := range cases {
		_, err := ParsePageRanges(input)
		require.Error(t, err, "input %q", input)
		var rangeErr *PageRangeError
		assert.ErrorAs(t, err, &rangeErr, "input %q", input)
	}
}
