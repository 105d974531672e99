package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"placed", StatusPlaced},
		{"Ready-To-Close", StatusReadyToClose},
		{"ready", StatusReadyToClose},
		{"inprogress", StatusKitchenInProgress},
		{"in_progress", StatusKitchenInProgress},
		{"kitchen-in-progress", StatusKitchenInProgress},
		{"Kitchen Done", StatusKitchenDone},
		{"completed", StatusClosed},
		{"Complete", StatusClosed},
		{"DONE", StatusClosed},
		{"ON_THE_WAY", StatusOnTheWay},
		{"assigned-to-courier", StatusAssignedToCourier},
		{" cancelled ", StatusCancelled},
	}
	for _, tc := range cases {
		got, err := NormalizeStatus(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizeStatusUnknown(t *testing.T) {
	_, err := NormalizeStatus("bogus")
	require.Error(t, err)

	var unknownErr *UnknownStatusError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, "bogus", unknownErr.Raw)
}

func TestCanTransitionDineIn(t *testing.T) {
	require.False(t, CanTransition(StatusPlaced, StatusClosed, TypeDineIn))
	require.True(t, CanTransition(StatusReadyToClose, StatusClosed, TypeDineIn))

	require.True(t, CanTransition(StatusCart, StatusPlaced, TypeDineIn))
	require.True(t, CanTransition(StatusPlaced, StatusKitchenInProgress, TypeDineIn))
	require.True(t, CanTransition(StatusKitchenInProgress, StatusKitchenDone, TypeDineIn))
	require.True(t, CanTransition(StatusKitchenDone, StatusReadyToClose, TypeDineIn))

	// Courier stages never apply to dine-in orders.
	require.False(t, CanTransition(StatusKitchenDone, StatusAssignedToCourier, TypeDineIn))
	require.False(t, CanTransition(StatusPlaced, StatusDelivered, TypeDineIn))
}

func TestCanTransitionTakeawayMatchesDineIn(t *testing.T) {
	edges := []struct{ from, to Status }{
		{StatusCart, StatusPlaced},
		{StatusPlaced, StatusKitchenInProgress},
		{StatusKitchenInProgress, StatusKitchenDone},
		{StatusKitchenDone, StatusReadyToClose},
		{StatusReadyToClose, StatusClosed},
	}
	for _, e := range edges {
		require.Equal(t,
			CanTransition(e.from, e.to, TypeDineIn),
			CanTransition(e.from, e.to, TypeTakeaway),
			"%s -> %s", e.from, e.to)
	}
}

func TestCanTransitionDelivery(t *testing.T) {
	require.True(t, CanTransition(StatusKitchenDone, StatusAssignedToCourier, TypeDelivery))
	require.True(t, CanTransition(StatusAssignedToCourier, StatusOnTheWay, TypeDelivery))
	require.True(t, CanTransition(StatusOnTheWay, StatusDelivered, TypeDelivery))
	require.True(t, CanTransition(StatusDelivered, StatusClosed, TypeDelivery))

	// Post-delivery cancellation is intentionally not an edge.
	require.False(t, CanTransition(StatusDelivered, StatusCancelled, TypeDelivery))

	require.True(t, CanTransition(StatusOnTheWay, StatusCancelled, TypeDelivery))
	require.False(t, CanTransition(StatusKitchenDone, StatusReadyToClose, TypeDelivery))
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	for _, terminal := range []Status{StatusClosed, StatusCancelled} {
		for _, orderType := range []OrderType{TypeDineIn, TypeTakeaway, TypeDelivery} {
			require.Empty(t, NextStatuses(terminal, orderType), "%s (%s)", terminal, orderType)
		}
		require.True(t, IsTerminal(terminal))
	}
	require.False(t, IsTerminal(StatusPlaced))
}

func TestCanTransitionUnknownType(t *testing.T) {
	require.False(t, CanTransition(StatusPlaced, StatusKitchenInProgress, OrderType("drive_through")))
}

func TestParseOrderType(t *testing.T) {
	got, err := ParseOrderType("Dine-In")
	require.NoError(t, err)
	require.Equal(t, TypeDineIn, got)

	_, err = ParseOrderType("pickup")
	var unknownErr *UnknownOrderTypeError
	require.ErrorAs(t, err, &unknownErr)
}
