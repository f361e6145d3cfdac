package engine

import "fmt"

// Mode selects how incoming control-change messages address DMX slots.
type Mode uint8

const (
	ModeCC7 Mode = iota
	ModeCC14
	ModeNRPN7
	ModeNRPN14
)

var modeNames = [...]string{"cc7", "cc14", "nrpn7", "nrpn14"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode maps a mode name from the configuration to its Mode value.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("invalid mode %q. Expects: cc7, cc14, nrpn7 or nrpn14", s)
}

// MIDI status commands (high nibble of the status byte).
const (
	cmdNoteOn        = 0x90
	cmdControlChange = 0xb0
)

// Controller numbers with a fixed meaning in the NRPN modes.
const (
	ccDataMSB = 6
	ccDataLSB = 38
	ccInc     = 96
	ccDec     = 97
	ccNRPNLSB = 98
	ccNRPNMSB = 99
)

// MaxUniverses is the number of consecutive universe frames the engine
// holds. The 14-bit NRPN parameter space (0..16383) maps onto exactly
// MaxUniverses*512 slots.
const MaxUniverses = 32

// Event is one 3-byte MIDI message as delivered by the input driver.
type Event struct {
	Status byte // high nibble: command, low nibble: channel
	Data1  byte // controller or note number
	Data2  byte // value or velocity
}
