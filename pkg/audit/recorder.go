package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/gate"
)

// Storage is the persistence interface consumed by the Recorder.
// Implementations live in the storage subpackage.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filter, newest first.
	Query(ctx context.Context, filter Filter) ([]*Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes records observed before the cutoff and
	// returns how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Filter selects audit records in a Query.
type Filter struct {
	// Fingerprint, when non-empty, matches records for one fingerprint.
	Fingerprint string

	// PolicyIdentity, when non-empty, matches records for one identity.
	PolicyIdentity string

	// Decision, when non-empty, matches one outcome class.
	Decision string

	// Since, when non-zero, excludes records observed before it.
	Since time.Time

	// Limit caps the result count. Zero means no cap.
	Limit int
}

// Recorder buffers validation results and writes them to storage from a
// background worker. Submitting a record never blocks: when the buffer is
// full the record is dropped and the drop counter incremented.
type Recorder struct {
	storage Storage
	logger  *slog.Logger

	records chan *Record
	dropped atomic.Int64

	closeOnce sync.Once
	closed    atomic.Bool
	quit      chan struct{}
	done      chan struct{}
}

// WriteTimeout bounds a single storage write from the worker.
const WriteTimeout = 5 * time.Second

// NewRecorder creates a Recorder with the given buffer size and starts its
// worker.
func NewRecorder(storage Storage, bufferSize int, logger *slog.Logger) *Recorder {
	if bufferSize < 1 {
		bufferSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		logger:  logger,
		records: make(chan *Record, bufferSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.worker()
	return r
}

// Observe converts a gate result into a record and submits it. It is
// intended to be wired as the gate's ObserverFunc.
func (r *Recorder) Observe(res gate.Result) {
	r.Submit(&Record{
		ID:             uuid.NewString(),
		Fingerprint:    res.Fingerprint.String(),
		PolicyIdentity: res.PolicyIdentity,
		Decision:       string(res.Verdict.Decision),
		Reason:         res.Verdict.Reason,
		CacheHit:       res.CacheHit,
		LatencyMicros:  res.Latency.Microseconds(),
		ObservedAt:     time.Now().UTC(),
	})
}

// Submit enqueues a record without blocking. Records submitted after Close,
// or while the buffer is full, are dropped and counted.
func (r *Recorder) Submit(record *Record) {
	if r.closed.Load() {
		r.dropped.Add(1)
		return
	}
	select {
	case r.records <- record:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns the number of records dropped so far.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting records, drains the buffer to storage, and waits
// for the worker to finish. The record channel is never closed, so a
// Submit racing Close can at worst enqueue a record that is dropped
// unwritten, never panic.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.quit)
		<-r.done
	})
}

// worker drains the record channel into storage until quit is signalled,
// then flushes whatever is still buffered.
func (r *Recorder) worker() {
	defer close(r.done)

	for {
		select {
		case record := <-r.records:
			r.write(record)
		case <-r.quit:
			for {
				select {
				case record := <-r.records:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

// write persists one record, bounded by WriteTimeout.
func (r *Recorder) write(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Warn("audit record write failed",
			"record_id", record.ID,
			"error", err,
		)
	}
}
