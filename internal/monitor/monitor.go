package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"midi2artnet/internal/engine"
	"midi2artnet/internal/logger"
)

const publishInterval = time.Second

// update is a value copy of one emitted frame.
type update struct {
	universe uint16
	frame    engine.Frame
}

// Publisher mirrors emitted universe frames to an MQTT broker. It sits
// entirely outside the real-time path: frames arrive over a buffered
// channel and are dropped when the publisher cannot keep up.
type Publisher struct {
	ctx     context.Context
	log     logger.Logger
	cfg     Conf
	client  mqtt.Client
	opts    *mqtt.ClientOptions
	updates chan update
}

// NewPublisher constructor.
func NewPublisher(log logger.Logger, cfg Conf) *Publisher {
	return &Publisher{
		log:     log,
		cfg:     cfg,
		updates: make(chan update, 64),
	}
}

// Start connects to the broker and runs the publishing loop.
func (p *Publisher) Start(ctx context.Context) error {
	if p.log.GetLevel() == "debug" {
		mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
		mqtt.CRITICAL = log.New(os.Stdout, "[CRIT] ", 0)
		mqtt.WARN = log.New(os.Stdout, "[WARN]  ", 0)
	}

	p.ctx = ctx

	p.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%s", p.cfg.Schema, p.cfg.Host, p.cfg.Port)).
		SetUsername(p.cfg.User).
		SetPassword(p.cfg.Password).
		SetOnConnectHandler(p.connectHandler).
		SetConnectionLostHandler(p.connectLostHandler).
		SetClientID(p.cfg.ClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	p.client = mqtt.NewClient(p.opts)

	token := p.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	case <-p.ctx.Done():
		return errors.New("context canceled")
	}

	p.log.With(logger.Fields{"module": "mqtt"}).Infof("Status: %v", p.client.IsConnected())
	go p.publishLoop()
	return nil
}

// Stop disconnects from the broker.
func (p *Publisher) Stop() error {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(500)
	}
	return nil
}

func (p *Publisher) connectHandler(_ mqtt.Client) {
	p.log.With(logger.Fields{"module": "mqtt"}).Info("client connected to server")
}

func (p *Publisher) connectLostHandler(_ mqtt.Client, err error) {
	p.log.With(logger.Fields{"module": "mqtt"}).Errorf("server connect lost: %v\n", err)
}

// offer queues a frame for publication without ever blocking the
// caller. Frames beyond the channel capacity are discarded; the next
// emission for the universe will carry the full state anyway.
func (p *Publisher) offer(universe uint16, frame *engine.Frame) {
	select {
	case p.updates <- update{universe: universe, frame: *frame}:
	default:
	}
}

// publishLoop coalesces updates and publishes the latest state of each
// universe at most once per publishInterval.
func (p *Publisher) publishLoop() {
	pending := make(map[uint16]engine.Frame)
	t := time.NewTicker(publishInterval)
	defer t.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case u := <-p.updates:
			pending[u.universe] = u.frame
		case <-t.C:
			for universe, frame := range pending {
				p.publish(universe, frame)
				delete(pending, universe)
			}
		}
	}
}

func (p *Publisher) publish(universe uint16, frame engine.Frame) {
	msg, err := json.Marshal(buildPayload(&frame))
	if err != nil {
		p.log.With(logger.Fields{"module": "mqtt"}).Errorf("payload marshal: %v", err)
		return
	}
	topic := fmt.Sprintf("%s/universe/%d", p.cfg.Topic, universe)
	token := p.client.Publish(topic, p.cfg.Qos, false, msg)
	go func() {
		topic := topic
		token := token
		select {
		case <-p.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				p.log.With(logger.Fields{"module": "mqtt"}).Errorf("error publish topic %s. %v\n", topic, token.Error())
			}
		}
	}()
}

// buildPayload reduces a frame to its non-zero slots.
func buildPayload(frame *engine.Frame) Payload {
	payload := Payload{}
	for slot, value := range frame {
		if value != 0 {
			payload = append(payload, DMXCommand{Channel: uint16(slot), Value: value})
		}
	}
	return payload
}

// TeeSender forwards every emission to the lighting network and offers
// a copy to the publisher.
type TeeSender struct {
	next engine.Sender
	pub  *Publisher
}

// NewTeeSender constructor.
func NewTeeSender(next engine.Sender, pub *Publisher) *TeeSender {
	return &TeeSender{next: next, pub: pub}
}

func (t *TeeSender) SendDMX(universe uint16, frame *engine.Frame) {
	t.next.SendDMX(universe, frame)
	t.pub.offer(universe, frame)
}
