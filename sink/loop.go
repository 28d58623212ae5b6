package sink

import (
	"fmt"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/flush"
	"github.com/relex/eventsink/util"
)

func (sink *Sink) run() {
	defer sink.loopStopped.Signal()
	for {
		select {
		case <-sink.scheduler.Ready():
			cycle := sink.scheduler.Begin()
			sent, err := sink.publish(cycle.Reason)
			cycle.Complete(sent, err)
		case <-sink.stopLoop.Channel():
			return
		}
	}
}

// publish runs one flush cycle and returns the number of entries sent
//
// Cancellation results in zero entries sent without error. Other failures are reported as faults and returned.
func (sink *Sink) publish(reason flush.Trigger) (sent int, err error) {
	sink.metrics.flushes.WithLabelValues(reason.String()).Inc()
	sink.reportOverflow()

	entries := sink.buffer.DrainAll()
	if len(entries) == 0 {
		return 0, nil
	}
	sink.metrics.bufferedEntries.Sub(float64(len(entries)))
	sink.logger.Debugf("flush: trigger=%s entries=%d", reason, len(entries))

	numSent := 0
	numPending := len(entries)
	panicKind := base.ErrorKindSerializationFailure // until the first send
	defer func() {
		if r := recover(); r != nil {
			sent, err = sink.fail(base.NewSinkError(panicKind, util.PanicToError(r)), numSent, numPending-numSent)
		}
	}()

	result, aerr := sink.assembler.Assemble(entries)
	if aerr != nil {
		return sink.fail(aerr, 0, len(entries))
	}
	numPending = result.NumIncluded
	panicKind = base.ErrorKindTransportFailure
	if result.NumExcluded > 0 {
		sink.metrics.dropped(defs.DropReasonOversize, result.NumExcluded)
		sink.logger.Warnf("dropped %d entries beyond maxMessageSize=%s", result.NumExcluded, sink.config.MaxMessageSize.HumanReadable())
	}

	for _, b := range result.Batches {
		if sink.runCtx.Err() != nil {
			return sink.fail(sink.runCtx.Err(), numSent, result.NumIncluded-numSent)
		}
		if serr := sink.transport.SendBatch(sink.runCtx, b); serr != nil {
			return sink.fail(serr, numSent, result.NumIncluded-numSent)
		}
		sink.logger.Debugf("sent batch %s", b.String())
		sink.metrics.sent(b)
		numSent += b.Len()
	}
	return numSent, nil
}

// fail handles the error of a flush cycle by its kind and returns the result of the cycle
//
// numSent is the count of entries delivered before the failure, numLost the count never to be delivered
func (sink *Sink) fail(err error, numSent int, numLost int) (int, error) {
	kind := base.ClassifyError(err)
	if kind == base.ErrorKindCancelled {
		sink.logger.Infof("flush cancelled: %s", err.Error())
		sink.abandonInFlight(numLost, defs.DropReasonAbandon)
		return 0, nil
	}

	sink.metrics.errors.WithLabelValues(kind.String()).Inc()
	sink.abandonInFlight(numLost, defs.DropReasonFailed)
	if kind.ReportsFault() {
		sink.logger.Errorf("flush failed: %s", err.Error())
		sink.faultLogger.ReportUnhandledFault(fmt.Sprintf("sink %s fault: %s", kind, err.Error()))
	} else {
		sink.logger.Warnf("flush failed: %s", err.Error())
	}
	if kind.Propagates() {
		return numSent, err
	}
	return numSent, nil
}

func (sink *Sink) abandonInFlight(count int, reason string) {
	if count <= 0 {
		return
	}
	sink.metrics.dropped(reason, count)
	sink.logger.Warnf("dropped %d undelivered entries: %s", count, reason)
}
