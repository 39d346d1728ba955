package processor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/datasheet-miner/internal/llm"
)

// indexedExtractor hands out a unique part number per call.
type indexedExtractor struct {
	mu sync.Mutex
	n  int
}

func (e *indexedExtractor) Extract(_ context.Context, _ llm.ExtractRequest) ([]byte, error) {
	e.mu.Lock()
	e.n++
	n := e.n
	e.mu.Unlock()
	return []byte(fmt.Sprintf(`[{"manufacturer":"ACME","part_number":"X%d"}]`, n)), nil
}

func TestDocumentQueueDrainProcessesAll(t *testing.T) {
	ddb := &fakeDDB{}
	proc := newTestProcessor(t, ddb, &indexedExtractor{})

	source := writeTestHTML(t)
	m := &Manifest{}
	for i := 0; i < 6; i++ {
		m.Documents = append(m.Documents, Request{Source: source, RecordType: "motor"})
	}

	queue := NewDocumentQueue(proc, nil, WithWorkers(3), WithQueueSize(8))
	report := queue.Drain(m)

	require.Len(t, report.Documents, 6)
	for i, summary := range report.Documents {
		assert.Equal(t, 1, summary.Found, "document %d", i)
	}
	assert.Equal(t, 6, report.Persisted)
	assert.Equal(t, 6, ddb.writtenCount())
}

// gatedExtractor blocks every call until released, signalling when a
// call has started.
type gatedExtractor struct {
	started chan struct{}
	release chan struct{}
}

func (e *gatedExtractor) Extract(_ context.Context, _ llm.ExtractRequest) ([]byte, error) {
	e.started <- struct{}{}
	<-e.release
	return []byte(`[{"manufacturer":"ACME","part_number":"X1"}]`), nil
}

func TestEnqueueKeepsSlotForInFlightDocument(t *testing.T) {
	extractor := &gatedExtractor{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	proc := newTestProcessor(t, &fakeDDB{}, extractor)
	queue := NewDocumentQueue(proc, nil, WithWorkers(1))

	source := writeTestHTML(t)
	queue.Enqueue(Request{Source: source, RecordType: "motor"})

	// The worker now holds the first document: it is out of the buffer
	// but its summary is not recorded yet. The second submission must
	// still get its own slot.
	<-extractor.started
	queue.Enqueue(Request{Source: source, RecordType: "motor"})

	close(extractor.release)
	queue.Shutdown()

	require.Len(t, queue.summaries, 2)
	assert.Equal(t, 1, queue.summaries[0].Found)
	assert.Equal(t, 1, queue.summaries[1].Found)
}

func TestDocumentQueueShutdownIsIdempotent(t *testing.T) {
	proc := newTestProcessor(t, &fakeDDB{}, &indexedExtractor{})
	queue := NewDocumentQueue(proc, nil, WithWorkers(2))

	queue.Shutdown()
	queue.Shutdown()
}
