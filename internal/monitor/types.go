package monitor

// Conf holds the connection settings for the MQTT state publisher.
type Conf struct {
	ClientID string // ClientID - unique client name for the broker.
	Schema   string // Schema - connection type.
	Host     string // Host - MQTT server address.
	Port     string // Port - MQTT server port.
	User     string // User - MQTT login.
	Password string // Password - MQTT password.
	Qos      byte   // Qos - quality of service.
	Topic    string // Topic - topic prefix for universe publications.
}

// DMXCommand is one non-zero slot of a published universe frame.
type DMXCommand struct {
	Channel uint16 `json:"channel"` // Channel is the slot number (0-511).
	Value   uint8  `json:"value"`   // Value is the slot value (0-255).
}

// Payload is the published representation of a universe frame.
type Payload []DMXCommand
