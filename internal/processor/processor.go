package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/darshanbhalani/temperature-consumer/internal/incident"
	"github.com/darshanbhalani/temperature-consumer/internal/log"
	"github.com/darshanbhalani/temperature-consumer/internal/models"
	"github.com/darshanbhalani/temperature-consumer/internal/queue"
	"github.com/darshanbhalani/temperature-consumer/internal/status"
	"github.com/darshanbhalani/temperature-consumer/internal/window"
)

// IncidentSink durably stores the violating batches of one window
type IncidentSink interface {
	StoreIncidents(ctx context.Context, set models.IncidentSet) error
}

// ThresholdSource provides the thresholds for the next window
type ThresholdSource interface {
	Current() models.Thresholds
	Refresh(ctx context.Context) models.Thresholds
}

// Clock returns the current time
type Clock func() time.Time

// Processor drives the ingestion loop: it receives readings, buffers them
// for the open window and, once the window has lasted long enough,
// classifies, reports and persists it before refreshing the thresholds.
// A Processor is not safe for concurrent use.
type Processor struct {
	source     queue.Source
	sink       IncidentSink
	reporter   status.Reporter
	thresholds ThresholdSource
	now        Clock

	buffer    *window.Buffer
	pending   []models.BatchIncident
	current   models.Thresholds
	lastClose time.Time
	state     State
}

// Option configures a Processor
type Option func(*Processor)

// WithClock replaces time.Now
func WithClock(c Clock) Option {
	return func(p *Processor) {
		p.now = c
	}
}

// NewProcessor creates a new processor
func NewProcessor(source queue.Source, sink IncidentSink, reporter status.Reporter, thresholds ThresholdSource, opts ...Option) *Processor {
	p := &Processor{
		source:     source,
		sink:       sink,
		reporter:   reporter,
		thresholds: thresholds,
		now:        time.Now,
		buffer:     window.NewBuffer(1024),
		current:    thresholds.Current(),
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the loop's current state
func (p *Processor) State() State {
	return p.state
}

// Buffered returns the number of readings in the open window
func (p *Processor) Buffered() int {
	return p.buffer.Len()
}

// Run consumes from the source until ctx is cancelled or a fatal error
// occurs. The open window starts when Run is called. Sources may defer
// joining the subscription until the first Receive, so Receiving also covers
// waiting for the subscription to be established. Cancellation is only
// observed while waiting for the next message; a window that is being
// closed is always finished first.
func (p *Processor) Run(ctx context.Context) error {
	p.lastClose = p.now()
	p.setState(StateReceiving)
	log.Infow("Consuming readings",
		"threshold_temperature", p.current.Temperature,
		"threshold_seconds", p.current.IntervalSeconds)

	for {
		payload, err := p.source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.setState(StateStopped)
				log.Info("Cancellation requested, stopping ingestion")
				return nil
			}
			if queue.IsTransient(err) {
				log.Warnw("Error receiving message", "error", err)
				continue
			}
			p.setState(StateStopped)
			return fmt.Errorf("receive: %w", err)
		}

		if err := p.process(context.WithoutCancel(ctx), payload); err != nil {
			p.setState(StateStopped)
			return err
		}
	}
}

// process handles one payload: it is decoded, appended to the open window
// and the window is closed if its interval has elapsed. Only persistence
// failures are returned.
func (p *Processor) process(ctx context.Context, payload []byte) error {
	readings, err := models.DecodeReadings(payload)
	if err != nil {
		log.Warnw("Skipping malformed message", "error", err, "bytes", len(payload))
		return nil
	}
	p.buffer.Append(readings...)

	p.setState(StateEvaluatingWindow)
	now := p.now()
	if !window.ShouldClose(now, p.lastClose, p.current.Interval()) {
		p.setState(StateReceiving)
		return nil
	}

	if err := p.closeWindow(ctx, now); err != nil {
		return err
	}
	p.setState(StateReceiving)
	return nil
}

func (p *Processor) closeWindow(ctx context.Context, now time.Time) error {
	active := p.current

	w, ok := window.Close(p.buffer.Readings(), active.Temperature)
	if !ok {
		// Nothing buffered yet; keep the window open.
		return nil
	}

	p.setState(StateClassifying)
	classified, violations := incident.Assess(w.Batches, active.Temperature)
	p.pending = append(p.pending, violations...)

	p.setState(StateReporting)
	report := models.WindowReport{
		Thresholds: active,
		Start:      w.Start,
		End:        w.End,
		ClosedAt:   now,
		Batches:    classified,
	}
	if err := p.reporter.Report(ctx, report); err != nil {
		log.Warnw("Failed to report window", "error", err)
	}

	p.setState(StatePersisting)
	if err := p.persist(ctx, active); err != nil {
		return err
	}

	p.buffer.Clear()
	p.pending = p.pending[:0]

	p.setState(StateConfigRefresh)
	p.current = p.thresholds.Refresh(ctx)
	p.lastClose = now

	log.Debugw("Window closed",
		"batches", len(classified),
		"incidents", len(violations),
		"window_start", w.Start,
		"window_end", w.End)
	return nil
}

// persist hands the pending set to the sink. The set is cleared before the
// call is issued.
func (p *Processor) persist(ctx context.Context, active models.Thresholds) error {
	if len(p.pending) == 0 {
		return nil
	}

	set := models.NewIncidentSet(p.pending, active)
	p.pending = p.pending[:0]

	if err := p.sink.StoreIncidents(ctx, set); err != nil {
		return fmt.Errorf("persist incidents: %w", err)
	}
	log.Infow("Stored temperature incidents", "count", set.Len())
	return nil
}

func (p *Processor) setState(s State) {
	if p.state == s {
		return
	}
	log.Debugw("State transition", "from", p.state, "to", s)
	p.state = s
}
