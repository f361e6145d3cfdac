package midiin

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"midi2artnet/internal/engine"
	"midi2artnet/internal/logger"
)

const (
	// cyclePeriod is the cadence of the processing cycle. Every tick the
	// queued events are handed to the engine as one batch.
	cyclePeriod = 5 * time.Millisecond

	// queueSize bounds the events waiting between two cycles. The driver
	// thread never blocks on a full queue; it drops instead.
	queueSize = 1024

	// batchSize is the maximum number of events processed per cycle.
	batchSize = 256
)

// Input owns the MIDI input port and the processing cycle that feeds
// the engine. The listener goroutine of the MIDI driver only touches
// the queue; engine state is touched exclusively by the cycle
// goroutine.
type Input struct {
	log        *logger.Log
	eng        *engine.Engine
	portName   string
	clientName string

	drv   *rtmididrv.Driver
	in    drivers.In
	stop  func()
	queue chan engine.Event
	batch []engine.Event

	dropped uint64 // atomic
}

// NewInput constructor. No port is opened until Start.
func NewInput(log *logger.Log, eng *engine.Engine, portName, clientName string) (*Input, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &Input{
		log:        log.With(logger.Fields{"module": "midi"}),
		eng:        eng,
		portName:   portName,
		clientName: clientName,
		drv:        drv,
		queue:      make(chan engine.Event, queueSize),
		batch:      make([]engine.Event, 0, batchSize),
	}, nil
}

// Start opens the input port and runs the processing cycle until the
// context is canceled. With no port configured a virtual input port is
// created under the client name, for other MIDI clients to connect to.
func (i *Input) Start(ctx context.Context) error {
	var in drivers.In
	var err error
	if i.portName == "" {
		in, err = i.drv.OpenVirtualIn(i.clientName)
		if err != nil {
			return fmt.Errorf("open virtual input %q: %w", i.clientName, err)
		}
	} else {
		if in, err = i.findPort(); err != nil {
			return err
		}
		if err = in.Open(); err != nil {
			return fmt.Errorf("open %q: %w", in.String(), err)
		}
	}

	stop, err := midi.ListenTo(in, i.onMessage, midi.HandleError(func(listenErr error) {
		// A message the driver could not decode. Skip it, keep the batch.
		i.log.Debugf("listener error: %v", listenErr)
	}))
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("listen %q: %w", in.String(), err)
	}

	i.in = in
	i.stop = stop
	i.log.Infof("listening on %q", in.String())

	go i.run(ctx)
	return nil
}

// Stop closes the listener, the port and the driver.
func (i *Input) Stop() {
	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
	if i.in != nil {
		_ = i.in.Close()
		i.in = nil
	}
	i.drv.Close()
	if n := atomic.LoadUint64(&i.dropped); n > 0 {
		i.log.Warnf("%d events dropped on full queue", n)
	}
}

// onMessage runs on the MIDI driver thread. It must return promptly:
// the event goes into the queue or is dropped, never processed here.
func (i *Input) onMessage(msg midi.Message, _ int32) {
	if len(msg) < 3 {
		return
	}
	ev := engine.Event{Status: msg[0], Data1: msg[1], Data2: msg[2]}
	select {
	case i.queue <- ev:
	default:
		atomic.AddUint64(&i.dropped, 1)
	}
}

// run is the processing cycle. It is the only goroutine that calls
// into the engine after startup.
func (i *Input) run(ctx context.Context) {
	t := time.NewTicker(cyclePeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			i.cycle()
		}
	}
}

// cycle drains the events ready in the queue into the reused batch
// slice and dispatches them in arrival order.
func (i *Input) cycle() {
	i.batch = i.batch[:0]
drain:
	for len(i.batch) < batchSize {
		select {
		case ev := <-i.queue:
			i.batch = append(i.batch, ev)
		default:
			break drain
		}
	}
	if len(i.batch) > 0 {
		i.eng.Process(i.batch)
	}
}

// findPort resolves the configured port name to an existing input
// port by case-insensitive substring match.
func (i *Input) findPort() (drivers.In, error) {
	ins, err := i.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(i.portName)) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("input port %q not found", i.portName)
}
