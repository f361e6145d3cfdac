package artnet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Haba1234/go-artnet"

	"midi2artnet/internal/engine"
	"midi2artnet/internal/logger"
)

// Sender is the transport for the ArtNet protocol (DMX over UDP/IP).
// It implements engine.Sender: transmission is fire-and-forget, no
// result is awaited or surfaced to the caller.
type Sender struct {
	logger logger.Logger
	sender *artnet.Controller
}

// NewSender returns an art-net Sender bound to the interface inside
// the given network CIDR.
func NewSender(log logger.Logger, network string) (*Sender, error) {
	ip, err := FindArtNetIP(network)
	if err != nil {
		return nil, fmt.Errorf("failed to find the art-net IP: %w", err)
	}

	if len(ip) == 0 {
		return nil, errors.New("failed to find the art-net IP: No interface found")
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	host = strings.ToLower(strings.Split(host, ".")[0])
	log.With(logger.Fields{"module": "art-net"}).Infof("Using ArtNet IP %s and hostname %s", ip.String(), host)

	senderLogger := artnet.NewDefaultLogger("info")

	return &Sender{
		logger: log,
		sender: artnet.NewController(host, ip, senderLogger, artnet.MaxFPS(40)),
	}, nil
}

// Start the ArtNet controller.
func (s *Sender) Start() error {
	if err := s.sender.Start(); err != nil {
		return fmt.Errorf("failed to start Controller: %w", err)
	}
	return nil
}

// Stop the ArtNet controller.
func (s *Sender) Stop() {
	s.sender.Stop()
}

// SendDMX transmits a full 512-slot frame to the given universe.
func (s *Sender) SendDMX(universe uint16, frame *engine.Frame) {
	s.sender.SendDMXToAddress([512]byte(*frame), universeToAddress(universe))
}

// universeToAddress converts a dmx universe number to an art-net
// address: high byte Net, low byte SubUni.
func universeToAddress(universe uint16) artnet.Address {
	v := make([]uint8, 2)
	binary.BigEndian.PutUint16(v, universe)

	return artnet.Address{
		Net:    v[0],
		SubUni: v[1],
	}
}
