package engine

import (
	"midi2artnet/internal/logger"
)

// Sender transmits a full DMX frame to the lighting network.
// Implementations must not block and must not report a result: the
// engine calls Send from the input cycle and never waits.
type Sender interface {
	SendDMX(universe uint16, frame *Frame)
}

// Config is the immutable engine configuration. It is fixed before the
// first Process call and never written afterwards.
type Config struct {
	Mode         Mode
	UniverseBase uint16 // universe number of buffer index 0
	ChannelMask  uint16 // bit per MIDI channel, bit 0 = channel 1
	EnableCC     bool
	EnableNote   bool
}

// Engine decodes MIDI events into DMX slot updates across up to
// MaxUniverses universes. All mutable state lives here and is owned by
// the single goroutine running the input cycle; no locking is needed.
type Engine struct {
	cfg    Config
	log    *logger.Log
	sender Sender
	store  bufferStore

	// Addressing state carried between events. cc14 deliberately reads
	// universe and bufferIndex without recomputing them.
	universe    uint16
	bufferIndex uint8
	slot        uint16

	// NRPN session, a single instance shared across all MIDI channels:
	// there is one NRPN editing stream per input, not one per channel.
	nrpnParam uint16 // parameter being adjusted [0..16383]
	nrpnValue uint8  // value [0..255]

	dispatch func(channel, cc, val uint8)
	debug    bool
}

// New constructs an engine. The dispatch target for control-change
// events is selected here, once, from the configured mode.
func New(cfg Config, sender Sender, log *logger.Log) *Engine {
	e := &Engine{
		cfg:      cfg,
		log:      log.With(logger.Fields{"module": "engine"}),
		sender:   sender,
		universe: cfg.UniverseBase,
		debug:    log.DebugEnabled(),
	}
	switch cfg.Mode {
	case ModeCC14:
		e.dispatch = e.cc14
	case ModeNRPN7:
		e.dispatch = e.nrpn7
	case ModeNRPN14:
		e.dispatch = e.nrpn14
	default:
		e.dispatch = e.cc7
	}
	return e
}

// Blackout zero-fills every universe frame and transmits each once.
// Called at startup so the lighting network starts from a known state.
func (e *Engine) Blackout() {
	for i := uint8(0); i < MaxUniverses; i++ {
		e.store.blackout(i)
		e.sender.SendDMX(uint16(i)+e.cfg.UniverseBase, e.store.frame(i))
	}
}

// Process dispatches one cycle's batch of MIDI events. It allocates
// nothing and performs no blocking operation: every event either
// mutates at most one frame (and possibly hands it to the sender) or
// is ignored.
func (e *Engine) Process(events []Event) {
	for _, ev := range events {
		cmd := ev.Status & 0xf0
		ch := ev.Status & 0x0f
		if e.cfg.ChannelMask&(1<<ch) == 0 {
			continue
		}
		switch {
		case cmd == cmdControlChange && e.cfg.EnableCC:
			e.dispatch(ch, ev.Data1, ev.Data2)
		case cmd == cmdNoteOn && e.cfg.EnableNote:
			// Note-on reuses the immediate 7-bit path: note number
			// addresses the slot, velocity carries the value.
			e.cc7(ch, ev.Data1, ev.Data2)
		}
	}
}

// emit hands the frame of the current buffer index to the lighting
// network. Fire-and-forget.
func (e *Engine) emit() {
	e.sender.SendDMX(e.universe, e.store.frame(e.bufferIndex))
}
