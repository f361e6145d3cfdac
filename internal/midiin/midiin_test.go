package midiin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"midi2artnet/internal/config"
	"midi2artnet/internal/engine"
	"midi2artnet/internal/logger"
)

type countingSender struct {
	universes []uint16
}

func (c *countingSender) SendDMX(universe uint16, _ *engine.Frame) {
	c.universes = append(c.universes, universe)
}

func newTestInput(t *testing.T, queueCap int) (*Input, *countingSender) {
	t.Helper()
	log, err := logger.NewLogger(config.LogConf{Level: "error"})
	require.NoError(t, err)

	sender := &countingSender{}
	eng := engine.New(engine.Config{
		Mode:         engine.ModeCC7,
		UniverseBase: 1,
		ChannelMask:  0xffff,
		EnableCC:     true,
	}, sender, log)

	// Driver deliberately absent: these tests exercise the queue and
	// cycle path only.
	return &Input{
		log:   log,
		eng:   eng,
		queue: make(chan engine.Event, queueCap),
		batch: make([]engine.Event, 0, batchSize),
	}, sender
}

// TestCycleDrainsQueueInOrder verifies queued events reach the engine
// as one ordered batch.
func TestCycleDrainsQueueInOrder(t *testing.T) {
	in, sender := newTestInput(t, 16)

	in.onMessage(midi.Message{0xb0, 1, 10}, 0)
	in.onMessage(midi.Message{0xb3, 2, 20}, 0)
	in.onMessage(midi.Message{0xb7, 3, 30}, 0)

	in.cycle()

	assert.Equal(t, []uint16{1, 4, 8}, sender.universes)
	assert.Empty(t, in.queue)
}

// TestCycleWithEmptyQueue verifies an idle cycle touches nothing.
func TestCycleWithEmptyQueue(t *testing.T) {
	in, sender := newTestInput(t, 16)

	in.cycle()
	assert.Empty(t, sender.universes)
}

// TestOnMessageSkipsShortMessages verifies messages below 3 bytes
// never enter the queue.
func TestOnMessageSkipsShortMessages(t *testing.T) {
	in, _ := newTestInput(t, 16)

	in.onMessage(midi.Message{0xf8}, 0)
	in.onMessage(midi.Message{0xc0, 5}, 0)

	assert.Empty(t, in.queue)
}

// TestOnMessageDropsWhenFull verifies the listener never blocks on a
// full queue.
func TestOnMessageDropsWhenFull(t *testing.T) {
	in, _ := newTestInput(t, 2)

	in.onMessage(midi.Message{0xb0, 1, 1}, 0)
	in.onMessage(midi.Message{0xb0, 2, 2}, 0)
	in.onMessage(midi.Message{0xb0, 3, 3}, 0)

	assert.Len(t, in.queue, 2)
	assert.Equal(t, uint64(1), in.dropped)
}
