package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

func TestMetrics_RecordCall(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordCall(SourceExplorer, 100*time.Millisecond, nil)
	m.RecordCall(SourceExplorer, 300*time.Millisecond, migrateerr.ErrNetworkError)
	m.RecordCall(SourcePrice, 10*time.Millisecond, nil)
	m.RecordCall(SourceRPC, 10*time.Millisecond, nil)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Explorer.Total)
	assert.Equal(t, int64(1), snap.Explorer.Errors)
	assert.InDelta(t, 200.0, snap.Explorer.AvgLatencyMs(), 0.001)
	assert.Equal(t, int64(1), snap.Price.Total)
	assert.Equal(t, int64(1), snap.RPC.Total)
}

func TestMetrics_UnknownSourceCountsAsRPC(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordCall("other", time.Millisecond, nil)
	assert.Equal(t, int64(1), m.Snapshot().RPC.Total)
}

func TestMetrics_Burns(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordBurnSubmitted()
	m.RecordBurnSubmitted()
	m.RecordBurnResult(nil)
	m.RecordBurnResult(migrateerr.ErrTxReverted)
	m.RecordStaleResult()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.BurnsSubmitted)
	assert.Equal(t, int64(1), snap.BurnsConfirmed)
	assert.Equal(t, int64(1), snap.BurnsFailed)
	assert.Equal(t, int64(1), snap.StaleResultsDropped)
}

func TestCallStats_AvgLatencyNoCalls(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.0, CallStats{}.AvgLatencyMs(), 0.001)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordCall(SourcePrice, time.Second, migrateerr.ErrGeneral)
	m.RecordBurnSubmitted()
	m.Reset()

	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestMetrics_Concurrent(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordCall(SourceExplorer, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.Snapshot().Explorer.Total)
}
