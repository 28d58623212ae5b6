// Package sink provides the buffered event sink: a bounded buffer drained by one publisher loop into batches for a
// transport, with explicit flush requests and a bounded shutdown
package sink

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v2"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/batch"
	"github.com/relex/eventsink/buffer"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/flush"
	"github.com/relex/eventsink/util"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
)

// State is the lifecycle state of a Sink
type State int32

// List of sink states
const (
	StateRunning State = iota
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Args contains the dependencies of a Sink besides its Config
type Args struct {
	Name          string
	Context       base.EntryContext
	Serializer    base.EntrySerializer
	Transport     base.BatchTransport
	FaultLogger   base.FaultLogger    // optional, faults are logged as errors if nil
	MetricFactory *base.MetricFactory // optional
	BatchIDSuffix string
}

// Sink buffers posted entries and publishes them in batches from one background loop
//
// Post can be called from any goroutine and never blocks. Flush cycles are triggered by timer, by count or by Flush,
// and never overlap.
type Sink struct {
	logger      logger.Logger
	config      Config
	buffer      *buffer.EntryBuffer
	scheduler   *flush.Scheduler
	assembler   *batch.Assembler
	transport   base.BatchTransport
	faultLogger base.FaultLogger
	metrics     sinkMetrics
	state       int32
	started     int32
	posted      *xsync.Counter
	lastDropped int64 // buffer overflow count already reported
	runCtx      context.Context
	cancelRun   context.CancelFunc
	finalFlush  atomic.Pointer[flush.Request]
	shutdown    *util.RunOnce
	stopLoop    *channels.SignalAwaitable
	loopStopped *channels.SignalAwaitable
	stopped     *channels.SignalAwaitable
}

// New creates a Sink, which starts accepting entries immediately and publishing after Start
func New(parentLogger logger.Logger, config Config, args Args) (*Sink, error) {
	if err := config.VerifyConfig(); err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	config = config.WithDefaults()

	sinkLogger := parentLogger.WithFields(logger.Fields{
		defs.LabelComponent: "Sink",
		defs.LabelName:      args.Name,
	})
	if config.PartitionKey != "" {
		sinkLogger = sinkLogger.WithField(defs.LabelPartitionKey, config.PartitionKey)
	}
	if config.BufferingInterval == 0 && config.Automatic() {
		sinkLogger.Warn("neither timer nor count trigger is enabled, entries are only flushed on request or shutdown")
	}

	faultLogger := args.FaultLogger
	if faultLogger == nil {
		faultLogger = base.NewLoggingFaultLogger(sinkLogger)
	}
	metricFactory := args.MetricFactory
	if metricFactory == nil {
		metricFactory = base.NewMetricFactory("eventsink_", nil, nil)
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	sink := &Sink{
		logger:      sinkLogger,
		config:      config,
		buffer:      nil,
		scheduler:   flush.NewScheduler(),
		assembler:   batch.NewAssembler(sinkLogger, args.Serializer, config.assemblerConfig(args.Context, args.BatchIDSuffix)),
		transport:   args.Transport,
		faultLogger: faultLogger,
		metrics:     newSinkMetrics(metricFactory.NewSubFactory("sink_", []string{"sink"}, []string{args.Name})),
		state:       int32(StateRunning),
		started:     0,
		posted:      xsync.NewCounter(),
		lastDropped: 0,
		runCtx:      runCtx,
		cancelRun:   cancelRun,
		finalFlush:  atomic.Pointer[flush.Request]{},
		shutdown:    util.NewRunOnce(),
		stopLoop:    channels.NewSignalAwaitable(),
		loopStopped: channels.NewSignalAwaitable(),
		stopped:     channels.NewSignalAwaitable(),
	}
	countThreshold := *config.BufferingCount // 0 in automatic mode, which disables count trigger
	sink.buffer = buffer.NewEntryBuffer(config.MaxBufferSize, countThreshold, sink.onCountReached)
	sink.metrics.init()
	return sink, nil
}

// Start launches the publisher loop and the timer trigger
//
// Calls after the first one or after Shutdown have no effect.
func (sink *Sink) Start() {
	if sink.State() != StateRunning || !atomic.CompareAndSwapInt32(&sink.started, 0, 1) {
		return
	}
	sink.logger.Infof("start: interval=%s count=%d maxBufferSize=%d automatic=%t",
		sink.config.BufferingInterval, *sink.config.BufferingCount, sink.config.MaxBufferSize, sink.config.Automatic())
	go sink.run()
	sink.scheduler.StartTimer(sink.config.BufferingInterval)
}

// Post adds an entry to the buffer without blocking
//
// Returns false if the entry is dropped, either because the buffer is full or because the sink is shutting down
func (sink *Sink) Post(entry base.LogEntry) bool {
	if sink.State() != StateRunning {
		sink.metrics.dropped(defs.DropReasonStopped, 1)
		return false
	}
	if !sink.buffer.Post(entry) {
		if sink.buffer.Closed() {
			sink.metrics.dropped(defs.DropReasonStopped, 1)
		}
		return false
	}
	sink.posted.Inc()
	sink.metrics.postedEntries.Inc()
	sink.metrics.bufferedEntries.Inc()
	return true
}

// Flush requests a flush cycle and returns its future
//
// During shutdown the final flush is returned, and after shutdown a resolved request with nothing sent.
func (sink *Sink) Flush() *flush.Request {
	switch sink.State() {
	case StateDraining:
		if final := sink.finalFlush.Load(); final != nil {
			return final
		}
	case StateStopped:
		return flush.NewCompletedRequest(0, nil)
	}
	return sink.scheduler.Request(flush.TriggerExplicit)
}

// Shutdown stops accepting entries, flushes remaining ones and closes the transport
//
// The final flush is bounded by bufferingFlushAllTimeout, after which pending entries are abandoned. Shutdown can be
// called many times and from different goroutines; all calls return after the sink is stopped.
func (sink *Sink) Shutdown() {
	sink.ShutdownWithTimeout(sink.config.OnCompletedTimeout())
}

// ShutdownWithTimeout is Shutdown with custom timeout for the final flush, zero or negative for infinite
func (sink *Sink) ShutdownWithTimeout(timeout time.Duration) {
	sink.shutdown.Do(func() {
		sink.drainAndStop(timeout)
	})
}

// State returns the current lifecycle state
func (sink *Sink) State() State {
	return State(atomic.LoadInt32(&sink.state))
}

// Stopped returns an Awaitable which is signaled when the sink has been fully stopped
func (sink *Sink) Stopped() channels.Awaitable {
	return sink.stopped
}

// Pending returns the number of entries waiting to be flushed
func (sink *Sink) Pending() int {
	return sink.buffer.Len()
}

// Posted returns the number of entries accepted so far
func (sink *Sink) Posted() int64 {
	return sink.posted.Value()
}

// Dropped returns the number of entries dropped by buffer overflow so far
func (sink *Sink) Dropped() int64 {
	return sink.buffer.Dropped()
}

func (sink *Sink) onCountReached() {
	sink.scheduler.Trigger(flush.TriggerCount)
}

func (sink *Sink) drainAndStop(timeout time.Duration) {
	sink.logger.Infof("shutdown: pending=%d timeout=%s", sink.buffer.Len(), timeout)
	atomic.StoreInt32(&sink.state, int32(StateDraining))
	sink.buffer.Close()
	sink.scheduler.StopTimer()

	final := sink.scheduler.Request(flush.TriggerShutdown)
	sink.finalFlush.Store(final)
	if atomic.CompareAndSwapInt32(&sink.started, 0, 1) {
		// never started: run the loop for the final flush only
		go sink.run()
	}

	if final.WaitTimeout(timeout) {
		sent, err := final.Result()
		if err != nil {
			sink.logger.Warnf("final flush failed after %d entries sent: %s", sent, err.Error())
		} else {
			sink.logger.Infof("final flush completed: sent=%d", sent)
		}
	} else {
		err := base.ErrFlushTimedOut
		sink.metrics.errors.WithLabelValues(base.ClassifyError(err).String()).Inc()
		sink.logger.Warnf("%s after %s, abandoning undelivered entries", err.Error(), timeout)
	}
	sink.cancelRun()
	sink.stopLoop.Signal()
	if !sink.loopStopped.Wait(defs.SinkLoopStopTimeout) {
		sink.logger.Errorf("BUG: publisher loop didn't stop in %s, transport may be ignoring cancellation", defs.SinkLoopStopTimeout)
	}
	sink.scheduler.Close()

	if leftovers := sink.buffer.DrainAll(); len(leftovers) > 0 {
		sink.abandon(len(leftovers), defs.DropReasonAbandon)
	}
	sink.reportOverflow()

	if err := sink.transport.Close(); err != nil {
		sink.logger.Warnf("failed to close transport: %s", err.Error())
	}
	atomic.StoreInt32(&sink.state, int32(StateStopped))
	sink.logger.Infof("stopped: posted=%d dropped=%d", sink.posted.Value(), sink.buffer.Dropped())
	sink.stopped.Signal()
}

func (sink *Sink) abandon(count int, reason string) {
	sink.metrics.dropped(reason, count)
	sink.metrics.bufferedEntries.Sub(float64(count))
	sink.logger.Warnf("dropped %d undelivered entries: %s", count, reason)
}

func (sink *Sink) reportOverflow() {
	total := sink.buffer.Dropped()
	delta := total - atomic.SwapInt64(&sink.lastDropped, total)
	if delta > 0 {
		sink.metrics.dropped(defs.DropReasonOverflow, int(delta))
		sink.logger.Warnf("dropped %d entries due to full buffer (maxBufferSize=%d)", delta, sink.config.MaxBufferSize)
	}
}
