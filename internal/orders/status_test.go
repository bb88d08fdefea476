package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(StatusProcessing, StatusDelivering))
	require.True(t, CanTransition(StatusDelivering, StatusCompleted))

	require.False(t, CanTransition(StatusProcessing, StatusCompleted))
	require.False(t, CanTransition(StatusCompleted, StatusProcessing))
	require.False(t, CanTransition(StatusDelivering, StatusProcessing))
	require.False(t, CanTransition(Status("shipped"), StatusCompleted))
}

func TestDisplayClass(t *testing.T) {
	require.Equal(t, "blue-color", DisplayClass(StatusProcessing))
	require.Equal(t, "yellow-color", DisplayClass(StatusDelivering))
	require.Equal(t, "green-color", DisplayClass(StatusCompleted))
	// unknown statuses are not an error, they just get no highlight
	require.Equal(t, "", DisplayClass(Status("shipped")))
	require.Equal(t, "", DisplayClass(Status("")))
}

func TestTotalItemsDefaultsMissingQtyToOne(t *testing.T) {
	o := Order{Lines: []Line{
		{ProductID: "p1", Qty: 3},
		{ProductID: "p2"}, // written before qty was recorded
		{ProductID: "p3", Qty: 1},
	}}
	require.Equal(t, 5, o.TotalItems())
	require.Equal(t, 0, Order{}.TotalItems())
}
