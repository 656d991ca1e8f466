package rsi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvents_EmitNeverBlocks(t *testing.T) {
	e := newEvents()

	// nobody consumes; fill every buffer well past capacity
	for i := 0; i < 1000; i++ {
		e.emitLog("line")
		e.emitStatus(Status{Price: float64(i)})
		e.emitMessage("msg")
		e.emitChart([]float64{1, 2, 3})
	}

	require.Len(t, e.logs, cap(e.logs))
	require.Len(t, e.statuses, cap(e.statuses))

	// old events are kept, new ones dropped
	s := <-e.Statuses()
	require.Equal(t, 0.0, s.Price)
}
