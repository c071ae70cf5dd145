package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{
		StatusPending, StatusPickedUp, StatusInTransit,
		StatusOutForDelivery, StatusDelivered, StatusFailed, StatusReturned,
	} {
		require.True(t, ValidStatus(s), s)
	}
	require.False(t, ValidStatus("Shipped"))
	require.False(t, ValidStatus(""))
	require.False(t, ValidStatus("pending"))
}

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(StatusPending, StatusPickedUp))
	require.True(t, CanTransition(StatusInTransit, StatusReturned))
	require.True(t, CanTransition(StatusOutForDelivery, StatusDelivered))

	require.False(t, CanTransition(StatusPending, StatusDelivered))
	require.False(t, CanTransition(StatusDelivered, StatusPending))
	require.False(t, CanTransition("Shipped", StatusPending))
}

func TestTerminalStatus(t *testing.T) {
	require.True(t, TerminalStatus(StatusDelivered))
	require.True(t, TerminalStatus(StatusFailed))
	require.True(t, TerminalStatus(StatusReturned))

	require.False(t, TerminalStatus(StatusPending))
	require.False(t, TerminalStatus("Shipped"))
}
