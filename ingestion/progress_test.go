package ingestion

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReporter_Interval(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := newProgressReporter(logger, 25, 10)

	for range 25 {
		p.Increment()
	}

	assert.Equal(t, 25, p.Completed())
	output := buf.String()
	assert.Equal(t, 2, strings.Count(output, "import progress"), "reports at 10 and 20, not at completion")
	assert.Contains(t, output, "remaining=15")
	assert.Contains(t, output, "remaining=5")
}

func TestProgressReporter_ClampsAtTotal(t *testing.T) {
	p := newProgressReporter(slog.New(slog.DiscardHandler), 3, 1)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, p.Completed())
}
