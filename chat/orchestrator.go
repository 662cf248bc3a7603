package chat

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/miosa/lingo-tui/client"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is still streaming")
	ErrClosed       = errors.New("orchestrator closed")
)

const (
	emptyNotice     = "Please type a message first."
	BusyNotice      = "Please wait for the current reply to finish."
	exhaustedReply  = "Sorry, I'm having trouble connecting right now. Please try again in a moment."
	initialInterval = time.Second
)

// StreamOpener is the slice of the backend used by Orchestrator.
type StreamOpener interface {
	OpenStream(ctx context.Context, req client.ChatRequest) (io.ReadCloser, error)
}

// Scheduler runs fn once after d and returns a function that cancels it.
// stop reports whether fn was prevented from running. fn must not be called
// synchronously from Scheduler itself.
type Scheduler func(d time.Duration, fn func()) (stop func() bool)

func afterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

type Option func(*Orchestrator)

func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) { o.schedule = s }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

func WithMeter(m metric.Meter) Option {
	return func(o *Orchestrator) { o.meter = m }
}

// WithIDGenerator replaces the bot message id source.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// exchange is one send/receive cycle. ctx and cancel are its cancellation
// handle; state is touched only by the goroutine running the exchange.
type exchange struct {
	id     string
	text   string
	botID  string
	ctx    context.Context
	cancel context.CancelFunc
	state  streamState
}

// Orchestrator sends user messages and drives the reply stream. At most one
// exchange is in flight; a send while busy is rejected, not queued.
type Orchestrator struct {
	backend  StreamOpener
	session  *Session
	progress *Progress
	ui       UI

	log      zerolog.Logger
	schedule Scheduler
	tracer   trace.Tracer
	meter    metric.Meter
	newID    func() string

	exchanges metric.Int64Counter
	retries   metric.Int64Counter
	events    metric.Int64Counter

	mu       sync.Mutex
	inFlight bool
	current  *exchange
	backoff  backoff.BackOff
	pending  map[uint64]func() bool
	seq      uint64
	closed   bool
	wg       sync.WaitGroup

	base       context.Context
	baseCancel context.CancelFunc
}

func New(backend StreamOpener, session *Session, progress *Progress, ui UI, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:  backend,
		session:  session,
		progress: progress,
		ui:       ui,
		log:      zerolog.Nop(),
		schedule: afterFunc,
		tracer:   tracenoop.NewTracerProvider().Tracer("lingo/chat"),
		meter:    metricnoop.NewMeterProvider().Meter("lingo/chat"),
		newID:    func() string { return "bot_" + uuid.NewString() },
		backoff:  newRetryBackOff(),
		pending:  make(map[uint64]func() bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.base, o.baseCancel = context.WithCancel(context.Background())
	o.exchanges = o.counter("lingo.exchanges", "Chat exchanges by outcome")
	o.retries = o.counter("lingo.retries", "Scheduled automatic retries")
	o.events = o.counter("lingo.stream.events", "Stream events by kind")
	return o
}

// newRetryBackOff yields 1s, 2s and then backoff.Stop, so the MaxRetries-th
// consecutive failure is the last.
func newRetryBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = initialInterval
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithMaxRetries(eb, MaxRetries-1)
}

func (o *Orchestrator) counter(name, desc string) metric.Int64Counter {
	c, err := o.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		o.log.Warn().Err(err).Str("instrument", name).Msg("metric unavailable")
		c, _ = metricnoop.NewMeterProvider().Meter("lingo/chat").Int64Counter(name)
	}
	return c
}

// Busy reports whether an exchange is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// Send runs one exchange for text and blocks until the reply stream ends.
// Validation failures are reported through UI and returned as ErrEmptyMessage
// or ErrBusy. A transport failure schedules a retry (or gives up on the
// MaxRetries-th consecutive failure) and is returned wrapped. Deliberate
// cancellation returns nil.
func (o *Orchestrator) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		o.ui.Notify(emptyNotice, SeverityWarning)
		return ErrEmptyMessage
	}

	ex, err := o.begin(ctx, text)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			o.ui.Notify(BusyNotice, SeverityWarning)
		}
		return err
	}
	defer o.wg.Done()

	o.ui.AppendMessage(text, SenderUser, "")
	o.ui.ClearInput()
	o.ui.SetSendEnabled(false)
	o.ui.SetTyping(true)

	err = o.run(ex)
	cancelled := ex.ctx.Err() != nil
	settled := ex.state.settled
	o.finish(ex)

	switch {
	case cancelled && settled:
		// the reply was already complete; only the body was still open
		o.streamDone()
		o.exchanges.Add(o.base, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
		return nil
	case cancelled:
		o.log.Debug().Str("exchange_id", ex.id).Msg("exchange cancelled")
		o.exchanges.Add(o.base, 1, metric.WithAttributes(attribute.String("outcome", "cancelled")))
		return nil
	case err != nil:
		o.exchanges.Add(o.base, 1, metric.WithAttributes(attribute.String("outcome", "failed")))
		o.fail(ex, err)
		return err
	}
	o.exchanges.Add(o.base, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	return nil
}

func (o *Orchestrator) begin(ctx context.Context, text string) (*exchange, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil, ErrClosed
	}
	if o.inFlight {
		return nil, ErrBusy
	}
	o.inFlight = true
	if o.current != nil {
		o.current.cancel()
		o.current = nil
	}
	ex := &exchange{id: uuid.NewString()[:8], text: text}
	ex.ctx, ex.cancel = context.WithCancel(ctx)
	o.current = ex
	o.wg.Add(1)
	return ex, nil
}

func (o *Orchestrator) run(ex *exchange) (err error) {
	id := o.session.Identity()
	attempt := o.session.RetryCount()

	ctx, span := o.tracer.Start(ex.ctx, "chat.exchange", trace.WithAttributes(
		attribute.String("session.id", id.SessionID),
		attribute.String("session.kind", string(id.Kind)),
		attribute.Int("attempt", attempt),
	))
	defer func() {
		switch {
		case ex.ctx.Err() != nil:
			span.SetAttributes(attribute.String("outcome", "cancelled"))
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("outcome", "failed"))
		default:
			span.SetAttributes(attribute.String("outcome", "ok"))
		}
		span.End()
	}()

	log := o.log.With().Str("exchange_id", ex.id).Str("session_id", id.SessionID).Int("attempt", attempt).Logger()
	log.Debug().Msg("opening stream")

	body, err := o.backend.OpenStream(ctx, client.ChatRequest{
		Message:     ex.text,
		SessionID:   id.SessionID,
		UserID:      id.UserID,
		SessionType: string(id.Kind),
	})
	if err != nil {
		return errors.Wrap(err, "open stream")
	}

	ex.botID = o.ui.AppendMessage("", SenderBot, o.newID())
	err = client.ReadStream(ctx, body, log, func(ev client.Event) {
		o.apply(ctx, ex, ev)
	})
	if err != nil {
		return err
	}

	o.streamDone()
	log.Debug().Msg("stream finished")
	return nil
}

// streamDone clears the retry state after a reply has been delivered.
func (o *Orchestrator) streamDone() {
	o.mu.Lock()
	o.backoff.Reset()
	o.mu.Unlock()
	o.session.resetRetries()
}

// apply runs one event through step and performs the resulting effects.
func (o *Orchestrator) apply(ctx context.Context, ex *exchange, ev client.Event) {
	if ex.ctx.Err() != nil {
		return
	}
	o.events.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(ev.Kind()))))

	var effects []effect
	ex.state, effects = step(ex.state, ev)
	for _, e := range effects {
		switch e := e.(type) {
		case renderBot:
			o.ui.UpdateMessage(ex.botID, e.content)
		case showTyping:
			o.ui.SetTyping(e.visible)
		case settle:
			o.mu.Lock()
			if o.current == ex {
				o.inFlight = false
			}
			o.mu.Unlock()
		case replaceSession:
			o.session.SetIdentity(Identity{SessionID: e.sessionID, UserID: e.userID, Kind: KindSimple})
			o.log.Info().Str("session_id", e.sessionID).Msg("session replaced by stream")
		case notice:
			o.ui.Notify(e.text, e.severity)
		case appendBot:
			o.ui.AppendMessage(e.content, SenderBot, "")
		case learnWords:
			var added int
			if e.explicit {
				added = o.progress.AddExplicit(e.count)
			} else {
				added = o.progress.AddEstimate(e.text)
			}
			total := o.progress.Total()
			o.ui.SetProgress(total, PercentFor(total))
			o.log.Debug().Int("added", added).Int("total", total).Bool("explicit", e.explicit).Msg("learning progress")
		}
	}
}

// finish releases the exchange. Shared state is only touched if the exchange
// has not been superseded by a newer one.
func (o *Orchestrator) finish(ex *exchange) {
	ex.cancel()
	o.mu.Lock()
	current := o.current == ex
	if current {
		o.inFlight = false
		o.current = nil
	}
	o.mu.Unlock()
	if current {
		o.ui.SetTyping(false)
		o.ui.SetSendEnabled(true)
	}
}

func (o *Orchestrator) fail(ex *exchange, err error) {
	o.mu.Lock()
	delay := o.backoff.NextBackOff()
	o.mu.Unlock()

	attempt := o.session.incRetries()
	if delay == backoff.Stop {
		o.log.Error().Err(err).Str("exchange_id", ex.id).Int("attempt", attempt).Msg("retries exhausted")
		o.ui.SetTyping(false)
		o.ui.AppendMessage(exhaustedReply, SenderBot, "")
		o.ui.SetConnectionStatus(ConnDisconnected)
		return
	}

	o.retries.Add(o.base, 1)
	o.log.Warn().Err(err).
		Str("exchange_id", ex.id).
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("exchange failed, retrying")
	o.scheduleRetry(delay, ex.text)
}

func (o *Orchestrator) scheduleRetry(delay time.Duration, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.seq++
	key := o.seq
	o.wg.Add(1)
	o.pending[key] = o.schedule(delay, func() {
		defer o.wg.Done()
		o.mu.Lock()
		_, ok := o.pending[key]
		delete(o.pending, key)
		o.mu.Unlock()
		if !ok {
			return
		}
		if o.Busy() {
			o.log.Debug().Msg("retry dropped, a newer exchange is running")
			return
		}
		if err := o.Send(o.base, text); err != nil {
			o.log.Debug().Err(err).Msg("retry attempt did not complete")
		}
	})
}

// Cancel aborts the in-flight exchange, if any. The abort is silent: no
// retry, no notice. It reports whether there was something to cancel.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	ex := o.current
	o.mu.Unlock()
	if ex == nil {
		return false
	}
	ex.cancel()
	return true
}

// Close cancels the in-flight exchange and pending retries and waits for
// them to wind down. Send returns ErrClosed afterwards.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	for key, stop := range o.pending {
		if stop() {
			o.wg.Done()
		}
		delete(o.pending, key)
	}
	ex := o.current
	o.mu.Unlock()

	o.baseCancel()
	if ex != nil {
		ex.cancel()
	}
	o.wg.Wait()
}
