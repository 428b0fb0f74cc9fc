package ingestion

import (
	"time"

	"github.com/poiesic/newsimport/core"
)

// Instruments receives batch lifecycle events for metrics emission.
// Implementations must be safe for concurrent use.
type Instruments interface {
	BatchStarted(queries int)
	QueryCompleted(m *core.QueryMetric)
	RecordsRejected(n int)
	BatchFinished(result *core.ImportResult, elapsed time.Duration)
}

type noopInstruments struct{}

func (noopInstruments) BatchStarted(int)                                 {}
func (noopInstruments) QueryCompleted(*core.QueryMetric)                 {}
func (noopInstruments) RecordsRejected(int)                              {}
func (noopInstruments) BatchFinished(*core.ImportResult, time.Duration) {}
