package match

import (
	"image"
	"math"
	"testing"

	"symbol-spotter/internal/symbol"
	"symbol-spotter/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableComparer looks scores up by (question X, reference X). Unlisted pairs
// score far.
type tableComparer map[[2]int]float64

func (c tableComparer) Score(q, ref symbol.Descriptor) float64 {
	if s, ok := c[[2]int{q.Box().X, ref.Box().X}]; ok {
		return s
	}
	return 5.0
}

func stub(t *testing.T, id int) symbol.Descriptor {
	t.Helper()
	mask := image.NewGray(image.Rect(0, 0, 1, 1))
	d, err := symbol.NewDescriptor(mask, geometry.NewRectInt(id, 0, 1, 1), nil)
	require.NoError(t, err)
	return d
}

func stubs(t *testing.T, ids ...int) []symbol.Descriptor {
	out := make([]symbol.Descriptor, len(ids))
	for i, id := range ids {
		out[i] = stub(t, id)
	}
	return out
}

// Reference ids are 0..4, question ids are 100+.
func TestResolve_EmptyInputs(t *testing.T) {
	r := NewResolver(tableComparer{}, DefaultSimilarityThreshold, nil)

	assert.False(t, r.Resolve(nil, stubs(t, 100)).Resolved)
	assert.False(t, r.Resolve(stubs(t, 0), nil).Resolved)
	assert.False(t, r.Resolve(nil, nil).Resolved)
	assert.Equal(t, "", r.Resolve(nil, nil).Letter())
}

func TestResolve_SingleMissing(t *testing.T) {
	for omit := 0; omit < 5; omit++ {
		table := tableComparer{}
		var qIDs []int
		for ref := 0; ref < 5; ref++ {
			if ref == omit {
				continue
			}
			qIDs = append(qIDs, 100+ref)
			table[[2]int{100 + ref, ref}] = 0.1
		}

		res := NewResolver(table, DefaultSimilarityThreshold, nil).Resolve(stubs(t, 0, 1, 2, 3, 4), stubs(t, qIDs...))
		require.True(t, res.Resolved)
		assert.Equal(t, omit, res.Index)
		assert.Equal(t, string(rune('A'+omit)), res.Letter())
	}
}

func TestResolve_AllMatched(t *testing.T) {
	table := tableComparer{}
	for i := 0; i < 5; i++ {
		table[[2]int{100 + i, i}] = 0.0
	}
	res := NewResolver(table, DefaultSimilarityThreshold, nil).Resolve(stubs(t, 0, 1, 2, 3, 4), stubs(t, 100, 101, 102, 103, 104))
	assert.False(t, res.Resolved)
}

func TestResolve_ThresholdIsStrict(t *testing.T) {
	table := tableComparer{
		{100, 0}: 0.2,
		{101, 1}: 1.0, // not below threshold, so 1 stays unmatched
		{101, 2}: 1.3,
	}
	res := NewResolver(table, DefaultSimilarityThreshold, nil).Resolve(stubs(t, 0, 1, 2), stubs(t, 100, 101))
	require.True(t, res.Resolved)
	// 1 and 2 both missing; 1 has the smaller near-miss score and is dropped.
	assert.Equal(t, 2, res.Index)
}

func TestResolve_TieBreakDropsNearestMiss(t *testing.T) {
	table := tableComparer{
		{100, 0}: 0.1,
		{101, 1}: 0.1,
		{102, 4}: 0.1,
		{102, 2}: 1.2,
		{101, 3}: 1.5,
	}
	res := NewResolver(table, DefaultSimilarityThreshold, nil).Resolve(stubs(t, 0, 1, 2, 3, 4), stubs(t, 100, 101, 102))
	require.True(t, res.Resolved)
	assert.Equal(t, 3, res.Index)
	assert.Equal(t, "D", res.Letter())
	assert.Equal(t, "tie-break", res.Reason)
}

func TestResolve_TieBreakPicksLowestRemaining(t *testing.T) {
	table := tableComparer{
		{100, 0}: 0.1,
		{100, 3}: 1.1,
	}
	// 1, 2, 3 missing; 3 is the near miss; 1 is the lowest remaining.
	res := NewResolver(table, DefaultSimilarityThreshold, nil).Resolve(stubs(t, 0, 1, 2, 3), stubs(t, 100))
	require.True(t, res.Resolved)
	assert.Equal(t, 1, res.Index)
}

func TestResolve_EqualBestMatchPrefersLowerIndex(t *testing.T) {
	table := tableComparer{
		{100, 0}: 0.3,
		{100, 1}: 0.3,
	}
	res := NewResolver(table, DefaultSimilarityThreshold, nil).Resolve(stubs(t, 0, 1), stubs(t, 100))
	require.True(t, res.Resolved)
	assert.Equal(t, 1, res.Index)
}

// nanComparer reports NaN for every pair against the listed reference ids.
type nanComparer struct {
	tableComparer
	unscored map[int]bool
}

func (c nanComparer) Score(q, ref symbol.Descriptor) float64 {
	if c.unscored[ref.Box().X] {
		return math.NaN()
	}
	return c.tableComparer.Score(q, ref)
}

func TestResolve_UnscoredIndexIsFallback(t *testing.T) {
	c := nanComparer{
		tableComparer: tableComparer{{100, 0}: 0.1, {100, 2}: 2.0},
		unscored:      map[int]bool{1: true},
	}
	res := NewResolver(c, DefaultSimilarityThreshold, nil).Resolve(stubs(t, 0, 1, 2), stubs(t, 100))
	require.True(t, res.Resolved)
	assert.Equal(t, 1, res.Index)
}

func TestResolve_NoScoresAtAll(t *testing.T) {
	c := nanComparer{unscored: map[int]bool{0: true, 1: true, 2: true}}
	res := NewResolver(c, DefaultSimilarityThreshold, nil).Resolve(stubs(t, 0, 1, 2), stubs(t, 100))
	require.True(t, res.Resolved)
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, "fallback without scores", res.Reason)
}
