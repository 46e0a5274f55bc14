// Package dispatch runs the deck's control loop: it answers heartbeats,
// resolves instruction codes to command sequences and acknowledges each
// instruction once its whole sequence has run.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/kenkudeck/pkg/action"
	"github.com/urmzd/kenkudeck/pkg/deck"
	"github.com/urmzd/kenkudeck/pkg/kenku"
)

const (
	defaultQueueSize        = 32
	defaultSubscriberBuffer = 16
)

type job struct {
	inst  Instruction
	reply chan Outcome
}

// Dispatcher owns the instruction queue. Heartbeats are answered on the
// reading goroutine; instructions run one at a time on a single executor in
// arrival order, so acknowledgments follow their instructions in order.
type Dispatcher struct {
	registry *action.Registry
	target   action.Target
	w        io.Writer

	qmu     sync.RWMutex
	queue   chan job
	started bool
	stopped bool
	exited  chan struct{}

	errMu sync.Mutex
	err   error
	done  chan struct{}

	state        atomic.Int32
	heartbeats   atomic.Uint64
	instructions atomic.Uint64
	acked        atomic.Uint64
	decodeErrors atomic.Uint64
	dropped      atomic.Uint64

	lastMu      sync.Mutex
	lastError   string
	lastErrorAt time.Time

	subscribersMu sync.Mutex
	subscribers   []chan Event
}

// New creates a Dispatcher that resolves codes with registry, runs commands
// on target and writes heartbeat replies and acknowledgments to w.
func New(registry *action.Registry, target action.Target, w io.Writer) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		target:   target,
		w:        w,
		queue:    make(chan job, defaultQueueSize),
		exited:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the executor. Commands run with ctx. Calling Start more
// than once has no effect.
func (d *Dispatcher) Start(ctx context.Context) {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	go d.run(ctx)
	log.Info().Int("bindings", d.registry.Len()).Msg("Dispatcher started")
}

// Stop refuses new instructions, waits for queued ones to finish and moves
// the dispatcher to Closed.
func (d *Dispatcher) Stop() {
	d.qmu.Lock()
	first := !d.stopped
	if first {
		d.stopped = true
		close(d.queue)
	}
	started := d.started
	d.qmu.Unlock()

	if started {
		<-d.exited
	}
	if first {
		d.setState(Closed)
		log.Info().Msg("Dispatcher stopped")
	}
}

// Done is closed when a configuration error halts the dispatcher.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Err returns the configuration error that halted the dispatcher, if any.
func (d *Dispatcher) Err() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.err
}

// State returns the current state machine state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Registry returns the bindings the dispatcher resolves against.
func (d *Dispatcher) Registry() *action.Registry {
	return d.registry
}

// Stats returns counters and the last remote failure.
func (d *Dispatcher) Stats() Stats {
	d.lastMu.Lock()
	defer d.lastMu.Unlock()
	return Stats{
		State:        d.State().String(),
		Heartbeats:   d.heartbeats.Load(),
		Instructions: d.instructions.Load(),
		Acknowledged: d.acked.Load(),
		DecodeErrors: d.decodeErrors.Load(),
		Dropped:      d.dropped.Load(),
		LastError:    d.lastError,
		LastErrorAt:  d.lastErrorAt,
	}
}

// Serve reads events from r until the stream ends. Heartbeats are answered
// immediately; instructions are queued for the executor. When the stream
// ends Serve stops the dispatcher, which drains the queue, and returns the
// halting configuration error if there was one. A closed or exhausted
// stream is a normal end and returns nil.
func (d *Dispatcher) Serve(ctx context.Context, r *deck.Reader) error {
	d.Start(ctx)

	readErr := d.readLoop(ctx, r)
	d.Stop()

	if err := d.Err(); err != nil {
		return err
	}
	if readErr == nil || errors.Is(readErr, io.EOF) || errors.Is(readErr, deck.ErrClosed) || errors.Is(readErr, context.Canceled) {
		log.Info().Msg("Serial stream ended")
		return nil
	}
	return readErr
}

func (d *Dispatcher) readLoop(ctx context.Context, r *deck.Reader) error {
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, deck.ErrDecode) {
				d.decodeErrors.Add(1)
				log.Warn().Err(err).Msg("Skipping malformed line")
				continue
			}
			return err
		}

		switch ev.Kind {
		case deck.EventHeartbeat:
			d.heartbeats.Add(1)
			if err := deck.ReplyHeartbeat(d.w); err != nil {
				return fmt.Errorf("%w: heartbeat reply: %v", deck.ErrClosed, err)
			}
			log.Debug().Msg("Heartbeat answered")
		case deck.EventInstruction:
			if err := d.enqueue(ctx, job{inst: Instruction{Code: ev.Code, Source: SourceSerial}}); err != nil {
				if errors.Is(err, ErrStopped) {
					log.Warn().Str("code", string(ev.Code)).Msg("Dropping instruction, dispatcher halted")
					continue
				}
				return err
			}
		}
	}
}

// Press queues a virtual key press and waits for its outcome. Virtual
// instructions are never acknowledged on the serial line. The returned error
// is the outcome's error, or a queueing failure.
func (d *Dispatcher) Press(ctx context.Context, code byte) (Outcome, error) {
	reply := make(chan Outcome, 1)
	if err := d.enqueue(ctx, job{inst: Instruction{Code: code, Source: SourceVirtual}, reply: reply}); err != nil {
		return Outcome{}, err
	}
	select {
	case out := <-reply:
		return out, out.Err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, j job) error {
	d.qmu.RLock()
	defer d.qmu.RUnlock()
	switch {
	case d.stopped:
		return ErrStopped
	case !d.started:
		return ErrNotRunning
	}
	select {
	case d.queue <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.exited)
	for j := range d.queue {
		if halted := d.Err(); halted != nil {
			out := Outcome{ID: uuid.New(), Code: string(j.inst.Code), Source: j.inst.Source, StartedAt: time.Now()}
			out.Err = fmt.Errorf("%w: %v", ErrStopped, halted)
			out.Error = out.Err.Error()
			if j.reply != nil {
				j.reply <- out
			}
			continue
		}

		out := d.Handle(ctx, j.inst)
		if j.reply != nil {
			j.reply <- out
		}
		if errors.Is(out.Err, action.ErrConfiguration) {
			d.halt(out.Err)
		}
	}
}

func (d *Dispatcher) halt(err error) {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	if d.err != nil {
		return
	}
	d.err = err
	close(d.done)
	d.setState(Closed)
	log.Error().Err(err).Msg("Configuration error, dispatcher halted")
}

// Handle runs one instruction through the state machine: resolve the code,
// execute its commands in order and, for serial instructions whose whole
// sequence succeeded, write the acknowledgment. The first failing command
// ends the sequence. Handle must not run concurrently with the executor.
func (d *Dispatcher) Handle(ctx context.Context, inst Instruction) Outcome {
	out := Outcome{
		ID:        uuid.New(),
		Code:      string(inst.Code),
		Source:    inst.Source,
		Commands:  []string{},
		StartedAt: time.Now(),
	}
	d.instructions.Add(1)
	defer d.setState(Idle)

	d.setState(ResolvingCode)
	commands, err := d.registry.Resolve(inst.Code)
	if err != nil {
		out.Err = err
		d.finish(&out, EventUnknownCode)
		log.Warn().Str("code", out.Code).Str("source", string(inst.Source)).Msg("Unknown instruction code")
		return out
	}

	d.setState(Executing)
	for _, cmd := range commands {
		out.Commands = append(out.Commands, cmd.String())
		if err := d.registry.Execute(ctx, d.target, cmd); err != nil {
			out.Err = fmt.Errorf("%s: %w", cmd.Name, err)
			break
		}
		log.Debug().Str("code", out.Code).Str("command", cmd.Name).Interface("params", cmd.Params).Msg("Command executed")
	}

	if out.Err == nil && inst.Source == SourceSerial {
		d.setState(Acknowledging)
		if err := deck.Acknowledge(d.w); err != nil {
			out.Err = fmt.Errorf("%w: acknowledge: %v", deck.ErrClosed, err)
		} else {
			out.Acknowledged = true
			d.acked.Add(1)
		}
	}

	if out.Err != nil {
		d.finish(&out, EventFailed)
		if errors.Is(out.Err, kenku.ErrTransport) || errors.Is(out.Err, kenku.ErrRemote) {
			d.recordFailure(out.Err)
		}
		log.Warn().
			Err(out.Err).
			Str("code", out.Code).
			Str("source", string(inst.Source)).
			Int("ran", len(out.Commands)).
			Int("bound", len(commands)).
			Msg("Instruction aborted")
		return out
	}

	d.finish(&out, EventCompleted)
	log.Info().
		Str("code", out.Code).
		Str("source", string(inst.Source)).
		Int("commands", len(out.Commands)).
		Bool("acknowledged", out.Acknowledged).
		Dur("latency", out.Duration).
		Msg("Instruction completed")
	return out
}

func (d *Dispatcher) finish(out *Outcome, eventType string) {
	out.Duration = time.Since(out.StartedAt)
	if out.Err != nil {
		out.Error = out.Err.Error()
	}
	d.publish(Event{Type: eventType, Outcome: *out, Timestamp: time.Now()})
}

func (d *Dispatcher) recordFailure(err error) {
	d.lastMu.Lock()
	defer d.lastMu.Unlock()
	d.lastError = err.Error()
	d.lastErrorAt = time.Now()
}

func (d *Dispatcher) setState(s State) {
	d.state.Store(int32(s))
}

// Subscribe returns a channel receiving every instruction event. Slow
// subscribers miss events rather than block the executor.
func (d *Dispatcher) Subscribe() chan Event {
	return d.SubscribeBuffered(defaultSubscriberBuffer)
}

// SubscribeBuffered is Subscribe with a buffer of size events, for
// subscribers that must ride out bursts.
func (d *Dispatcher) SubscribeBuffered(size int) chan Event {
	if size < 1 {
		size = defaultSubscriberBuffer
	}
	ch := make(chan Event, size)
	d.subscribersMu.Lock()
	d.subscribers = append(d.subscribers, ch)
	d.subscribersMu.Unlock()
	return ch
}

// Unsubscribe removes and closes ch.
func (d *Dispatcher) Unsubscribe(ch chan Event) {
	d.subscribersMu.Lock()
	defer d.subscribersMu.Unlock()

	for i, sub := range d.subscribers {
		if sub == ch {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (d *Dispatcher) publish(evt Event) {
	d.subscribersMu.Lock()
	defer d.subscribersMu.Unlock()

	for _, ch := range d.subscribers {
		select {
		case ch <- evt:
		default:
			d.dropped.Add(1)
			log.Debug().Str("event", evt.Type).Str("code", evt.Outcome.Code).
				Str("id", evt.Outcome.ID.String()).Msg("Subscriber full, event dropped")
		}
	}
}
