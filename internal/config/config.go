package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const maxClientNameLen = 255

// Config is the full application configuration.
type Config struct {
	Logger LogConf  // Logger - logging configuration.
	MIDI   MIDIConf // MIDI - input port and listening configuration.
	DMX    DMXConf  // DMX - universe mapping and Art-Net configuration.
	MQTT   MQTTConf // MQTT - optional state publisher configuration.
}

// LogConf holds the logger settings.
type LogConf struct {
	Level string `toml:"log-level"` // Level - logging level.
}

// MIDIConf holds the MIDI input settings.
type MIDIConf struct {
	Port       string `toml:"port"`        // Port - input port name (substring match, empty: first port).
	ClientName string `toml:"client-name"` // ClientName - name announced to the MIDI system.
	Mode       string `toml:"mode"`        // Mode - one of cc7, cc14, nrpn7, nrpn14.
	CC         bool   `toml:"cc"`          // CC - listen for control-change messages.
	Note       bool   `toml:"note"`        // Note - listen for note-on messages.
	Exclude    []int  `toml:"exclude"`     // Exclude - MIDI channels (1..16) to ignore.
}

// DMXConf holds the DMX output settings.
type DMXConf struct {
	FirstUniverse int    `toml:"first-universe"` // FirstUniverse - universe number of buffer index 0.
	Network       string `toml:"network"`        // Network - CIDR the Art-Net interface lives in.
}

// MQTTConf holds the optional MQTT publisher settings.
type MQTTConf struct {
	Enabled  bool   `toml:"enabled"`  // Enabled - publish universe state over MQTT.
	ClientID string `toml:"clientID"` // ClientID - client name for the broker.
	Host     string `toml:"server"`   // Host - MQTT server address.
	Port     string `toml:"port"`     // Port - MQTT server port.
	User     string `toml:"user"`     // User - MQTT login.
	Password string `toml:"password"` // Password - MQTT password.
	Qos      byte   `toml:"qos"`      // Qos - quality of service.
	Topic    string `toml:"topic"`    // Topic - topic prefix for publications.
}

// NewConfig constructor. A missing file is not an error: the defaults
// stand and the command line can override them.
func NewConfig(path string) (*Config, error) {
	cfg := Config{
		Logger: LogConf{Level: "info"},
		MIDI: MIDIConf{
			ClientName: "midi2artnet",
			Mode:       "cc7",
		},
		DMX: DMXConf{
			FirstUniverse: 1,
			Network:       "192.168.6.0/24",
		},
		MQTT: MQTTConf{
			ClientID: "midi2artnet",
			Topic:    "midi2artnet",
		},
	}
	if path == "" {
		return &cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return &cfg, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine must never start with.
func (c *Config) Validate() error {
	if c.DMX.FirstUniverse < 1 {
		return fmt.Errorf("first universe must be positive, got %d", c.DMX.FirstUniverse)
	}
	if len(c.MIDI.ClientName) > maxClientNameLen {
		return fmt.Errorf("client name must be less than %d characters", maxClientNameLen+1)
	}
	for _, ch := range c.MIDI.Exclude {
		if ch < 1 || ch > 16 {
			return fmt.Errorf("exclude MIDI channel must be between 1..16, got %d", ch)
		}
	}
	if c.MQTT.Enabled && c.MQTT.Host == "" {
		return fmt.Errorf("mqtt enabled but no server configured")
	}
	return nil
}

// Normalize fills the listening flags the way the original interface
// behaves: CC listening is on unless note listening was the only one
// requested.
func (c *Config) Normalize() {
	if !c.MIDI.CC && !c.MIDI.Note {
		c.MIDI.CC = true
	}
}

// ChannelMask builds the 16-bit enable mask from the exclusion list.
// Validate must have accepted the config first.
func (c *Config) ChannelMask() uint16 {
	mask := uint16(0xffff)
	for _, ch := range c.MIDI.Exclude {
		mask &^= 1 << (ch - 1)
	}
	return mask
}
