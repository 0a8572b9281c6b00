package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opaline-dev/troupe/internal/state"
)

func noopNode(context.Context, *state.State) (state.Patch, error) {
	return state.Patch{}, nil
}

func TestAddNodeRejectsReservedNames(t *testing.T) {
	g := New()
	require.Error(t, g.AddNode("", noopNode))
	require.Error(t, g.AddNode(Start, noopNode))
	require.Error(t, g.AddNode(End, noopNode))
	require.Error(t, g.AddNode("a", nil))

	require.NoError(t, g.AddNode("a", noopNode))
	require.Error(t, g.AddNode("a", noopNode))
}

func TestAddEdgeFromStartSetsEntryOnce(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode("a", noopNode))
	require.NoError(t, g.AddEdge(Start, "a"))
	assert.Equal(t, "a", g.Entry())
	require.Error(t, g.AddEdge(Start, "a"))
}

func TestStaticAndConditionalEdgesAreExclusive(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode("a", noopNode))
	require.NoError(t, g.AddEdge("a", End))
	require.Error(t, g.AddConditionalEdge("a", func(*state.State) string { return End }))

	g = New()
	require.NoError(t, g.AddNode("a", noopNode))
	require.NoError(t, g.AddConditionalEdge("a", func(*state.State) string { return End }))
	require.Error(t, g.AddEdge("a", End))
	require.Error(t, g.AddConditionalEdge("b", nil))
}

func TestValidate(t *testing.T) {
	g := New()
	require.Error(t, g.Validate()) // no entry

	require.NoError(t, g.AddNode("a", noopNode))
	require.NoError(t, g.AddEdge(Start, "a"))
	require.Error(t, g.Validate()) // a has no outgoing edge

	require.NoError(t, g.AddEdge("a", "missing"))
	require.Error(t, g.Validate()) // edge to undefined node

	g = New()
	require.NoError(t, g.AddNode("a", noopNode))
	require.NoError(t, g.AddEdge(Start, "a"))
	require.NoError(t, g.AddEdge("a", End))
	require.NoError(t, g.Validate())
}

func TestNextFollowsStaticAndConditionalEdges(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode("a", noopNode))
	require.NoError(t, g.AddNode("b", noopNode))
	require.NoError(t, g.AddEdge(Start, "a"))
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddConditionalEdge("b", func(st *state.State) string {
		if st.IterationCount > 0 {
			return "a"
		}
		return End
	}))
	require.NoError(t, g.Validate())

	st := state.New("task")
	next, err := g.next("a", st)
	require.NoError(t, err)
	assert.Equal(t, "b", next)

	next, err = g.next("b", st)
	require.NoError(t, err)
	assert.Equal(t, End, next)

	st.IterationCount = 1
	next, err = g.next("b", st)
	require.NoError(t, err)
	assert.Equal(t, "a", next)
}

func TestNextRejectsUndefinedRouteTarget(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode("a", noopNode))
	require.NoError(t, g.AddConditionalEdge("a", func(*state.State) string { return "ghost" }))

	_, err := g.next("a", state.New("task"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}
