package pathfind

import (
	"iter"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type arc struct {
	to   int
	cost float64
}

type testGraph map[int][]arc

func (g testGraph) add(from, to int, cost float64) {
	g[from] = append(g[from], arc{to, cost})
}

func (g testGraph) setCost(from, to int, cost float64) {
	for i := range g[from] {
		if g[from][i].to == to {
			g[from][i].cost = cost
		}
	}
}

func (g testGraph) neighbors(n int) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for _, a := range g[n] {
			if !yield(a.to, a.cost) {
				return
			}
		}
	}
}

func fixture() testGraph {
	g := testGraph{}
	g.add(1, 2, 1)
	g.add(1, 4, 1)
	g.add(2, 3, 1)
	g.add(3, 4, 5)
	g.add(3, 5, 1)
	g.add(4, 5, 1)
	g.add(4, 6, 1)
	g.add(5, 6, 2)
	return g
}

func TestFindPathFixture(t *testing.T) {
	g := fixture()
	a := New(g.neighbors, Zero[int])

	a.ResetSingle(1, 6)
	require.Equal(t, PathFound, a.FindPath())
	assert.Equal(t, []int{1, 4, 6}, a.Path())
	assert.Equal(t, 2.0, a.Cost())

	g.setCost(1, 4, 5)
	a.ResetSingle(1, 6)
	require.Equal(t, PathFound, a.FindPath())
	assert.Equal(t, []int{1, 2, 3, 5, 6}, a.Path())
	assert.Equal(t, 5.0, a.Cost())
}

func TestFindPathMultipleStartsAndGoals(t *testing.T) {
	a := New(fixture().neighbors, Zero[int])

	a.Reset([]int{0, 1}, []int{7, 6})
	require.Equal(t, PathFound, a.FindPath())
	path := a.Path()
	assert.Equal(t, []int{1, 4, 6}, path)
	assert.Contains(t, []int{0, 1}, path[0])
	assert.Contains(t, []int{7, 6}, path[len(path)-1])
}

func TestFindPathNoPath(t *testing.T) {
	a := New(fixture().neighbors, Zero[int])

	a.ResetSingle(6, 1)
	assert.Equal(t, NoPath, a.FindPath())
	assert.Empty(t, a.Path())
	assert.True(t, math.IsInf(a.Cost(), 1))

	a.Reset([]int{1}, nil)
	assert.Equal(t, NoPath, a.FindPath())
}

func TestPathEmptyBeforeSearch(t *testing.T) {
	a := New(fixture().neighbors, Zero[int])
	assert.Empty(t, a.Path())

	a.ResetSingle(1, 6)
	assert.Empty(t, a.Path())
	assert.Equal(t, NoPath, a.Result())
}

func TestFindPathStartIsGoal(t *testing.T) {
	a := New(fixture().neighbors, Zero[int])
	a.ResetSingle(3, 3)
	require.Equal(t, PathFound, a.FindPath())
	assert.Equal(t, []int{3}, a.Path())
	assert.Zero(t, a.Expanded())
}

func TestEqualCostExpandsInPushOrder(t *testing.T) {
	g := testGraph{}
	g.add(1, 2, 1)
	g.add(1, 3, 1)
	g.add(2, 4, 1)
	g.add(3, 4, 1)

	a := New(g.neighbors, Zero[int])
	for range 3 {
		a.ResetSingle(1, 4)
		require.Equal(t, PathFound, a.FindPath())
		assert.Equal(t, []int{1, 2, 4}, a.Path())
	}
}

func TestClosedNodeIsReopened(t *testing.T) {
	const s, nodeA, nodeB, goal = 1, 2, 3, 4
	g := testGraph{}
	g.add(s, nodeA, 1)
	g.add(s, nodeB, 3)
	g.add(nodeA, nodeB, 1)
	g.add(nodeB, goal, 5)
	// admissible but inconsistent at A, so B is expanded before its best parent
	h := func(n, _ int) float64 {
		if n == nodeA {
			return 3.5
		}
		return 0
	}

	a := New(g.neighbors, h)
	a.ResetSingle(s, goal)
	require.Equal(t, PathFound, a.FindPath())
	assert.Equal(t, []int{s, nodeA, nodeB, goal}, a.Path())
	assert.Equal(t, 7.0, a.Cost())
	assert.Equal(t, 4, a.Expanded())
}

func TestExpansionBudgetGivesPartialPath(t *testing.T) {
	g := testGraph{}
	for i := 1; i < 5; i++ {
		g.add(i, i+1, 1)
	}
	h := func(n, goal int) float64 { return math.Abs(float64(goal - n)) }

	a := New(g.neighbors, h, WithMaxExpansions(2))
	assert.Equal(t, 2, a.MaxExpansions())

	a.ResetSingle(1, 5)
	require.Equal(t, PartialPath, a.FindPath())
	assert.Equal(t, []int{1, 2}, a.Path())
	assert.Equal(t, 2, a.Expanded())

	a.ResetSingle(1, 3)
	require.Equal(t, PathFound, a.FindPath())
	assert.Equal(t, []int{1, 2, 3}, a.Path())
}

func TestHeuristicUsesNearestGoal(t *testing.T) {
	g := testGraph{}
	g.add(0, -1, 1)
	g.add(0, 1, 1)
	g.add(1, 2, 1)
	g.add(-1, -2, 1)
	g.add(-2, -3, 1)
	h := func(n, goal int) float64 { return math.Abs(float64(goal - n)) }

	a := New(g.neighbors, h)
	a.Reset([]int{0}, []int{2, -3})
	require.Equal(t, PathFound, a.FindPath())
	assert.Equal(t, []int{0, 1, 2}, a.Path())
	assert.Equal(t, 2, a.Expanded())
}

func TestNegativeCostsAreIgnored(t *testing.T) {
	g := testGraph{}
	g.add(1, 2, -1)
	g.add(1, 3, math.NaN())

	a := New(g.neighbors, nil)
	a.ResetSingle(1, 2)
	assert.Equal(t, NoPath, a.FindPath())
	a.ResetSingle(1, 3)
	assert.Equal(t, NoPath, a.FindPath())
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "path_found", PathFound.String())
	assert.Equal(t, "partial_path", PartialPath.String())
	assert.Equal(t, "no_path", NoPath.String())
}

func BenchmarkGrid(b *testing.B) {
	const w = 128
	neighbors := func(n int) iter.Seq2[int, float64] {
		return func(yield func(int, float64) bool) {
			x, y := n%w, n/w
			for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= w {
					continue
				}
				if !yield(ny*w+nx, 1) {
					return
				}
			}
		}
	}
	manhattan := func(n, goal int) float64 {
		return math.Abs(float64(n%w-goal%w)) + math.Abs(float64(n/w-goal/w))
	}

	a := New(neighbors, manhattan)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.ResetSingle(0, w*w-1)
		if a.FindPath() != PathFound {
			b.Fatal("no path")
		}
	}
}
