package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIndexesArticles(t *testing.T) {
	all := All()
	require.Len(t, all, len(articles))

	for i, a := range all {
		assert.Equal(t, i, a.Index)
		assert.NotEmpty(t, a.Name)
	}
}

func TestAllReturnsCopies(t *testing.T) {
	All()[0].Tags[0] = "mutated"
	All()[0].Name = "mutated"

	assert.NotEqual(t, "mutated", articles[0].Tags[0])
	assert.NotEqual(t, "mutated", articles[0].Name)
}

func TestByIndex(t *testing.T) {
	a, err := ByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, articles[1].Name, a.Name)
	assert.Equal(t, 1, a.Index)

	_, err = ByIndex(-1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ByIndex(len(articles))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestByTag(t *testing.T) {
	houses := ByTag("HOUSE")
	require.Len(t, houses, 2)
	assert.Equal(t, 0, houses[0].Index)
	assert.Equal(t, 2, houses[1].Index)

	assert.Empty(t, ByTag("nothing-tagged-this"))
	assert.Len(t, ByTag(" "), len(articles))
}
