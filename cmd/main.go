package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"midi2artnet/internal/artnet"
	"midi2artnet/internal/config"
	"midi2artnet/internal/engine"
	"midi2artnet/internal/logger"
	"midi2artnet/internal/midiin"
	"midi2artnet/internal/monitor"
)

const version = "0.1.0"

// channelList collects repeatable -exclude flags.
type channelList []int

func (c *channelList) String() string {
	parts := make([]string, len(*c))
	for i, ch := range *c {
		parts[i] = strconv.Itoa(ch)
	}
	return strings.Join(parts, ",")
}

func (c *channelList) Set(s string) error {
	ch, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("exclude MIDI channel must be a number: %w", err)
	}
	*c = append(*c, ch)
	return nil
}

var (
	configFile  string
	modeFlag    string
	universe    int
	ccFlag      bool
	noteFlag    bool
	portFlag    string
	clientName  string
	logLevel    string
	showVersion bool
	exclude     channelList
)

func init() {
	flag.StringVar(&configFile, "config", "configs/conf.toml", "Path to configuration file")
	flag.StringVar(&modeFlag, "mode", "", "MIDI mode: cc7, cc14, nrpn7 or nrpn14")
	flag.IntVar(&universe, "universe", 0, "First DMX universe")
	flag.BoolVar(&ccFlag, "cc", false, "Listen for MIDI CC")
	flag.BoolVar(&noteFlag, "note", false, "Listen for MIDI note-on")
	flag.StringVar(&portFlag, "port", "", "MIDI input port to connect to (default: create a virtual port)")
	flag.StringVar(&clientName, "client-name", "", "Name of the MIDI client")
	flag.StringVar(&logLevel, "log-level", "", "Logging level")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.Var(&exclude, "exclude", "Do not listen on MIDI channel (1..16, can be provided multiple times)")
}

// applyFlags overrides file configuration with the flags that were
// explicitly set on the command line.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.MIDI.Mode = modeFlag
		case "universe":
			cfg.DMX.FirstUniverse = universe
		case "cc":
			cfg.MIDI.CC = ccFlag
		case "note":
			cfg.MIDI.Note = noteFlag
		case "port":
			cfg.MIDI.Port = portFlag
		case "client-name":
			cfg.MIDI.ClientName = clientName
		case "log-level":
			cfg.Logger.Level = logLevel
		case "exclude":
			cfg.MIDI.Exclude = append(cfg.MIDI.Exclude, exclude...)
		}
	})
}

func main() {
	flag.Parse()
	if showVersion {
		fmt.Printf("midi2artnet version %s\n", version)
		return
	}

	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	cfg.Normalize()
	if err = cfg.Validate(); err != nil {
		fmt.Printf("invalid configuration: %v", err)
		os.Exit(1)
	}

	mode, err := engine.ParseMode(cfg.MIDI.Mode)
	if err != nil {
		fmt.Printf("invalid configuration: %v", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v", err)
		os.Exit(1)
	}

	log.Info("Starting midi2artnet - MIDI to Art-Net interface")
	log.Infof("  Mode: %s", mode)
	log.Infof("  First universe: %d", cfg.DMX.FirstUniverse)
	log.Infof("  Enabled MIDI channels: %s", enabledChannels(cfg.ChannelMask()))

	sender, err := artnet.NewSender(log, cfg.DMX.Network)
	if err != nil {
		log.With(logger.Fields{"module": "art-net"}).Errorf("error while creating the art-net sender. %v", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	if err = sender.Start(); err != nil {
		log.Error("failed to start art-net service:", err.Error())
		os.Exit(1)
	}

	var emit engine.Sender = sender
	var pub *monitor.Publisher
	if cfg.MQTT.Enabled {
		pub = monitor.NewPublisher(log, ConvertConfigMonitor(cfg.MQTT))
		if err = pub.Start(ctx); err != nil {
			log.Error("failed to start MQTT service:", err.Error())
			cancel()
		}
		emit = monitor.NewTeeSender(sender, pub)
	}

	eng := engine.New(engine.Config{
		Mode:         mode,
		UniverseBase: uint16(cfg.DMX.FirstUniverse),
		ChannelMask:  cfg.ChannelMask(),
		EnableCC:     cfg.MIDI.CC,
		EnableNote:   cfg.MIDI.Note,
	}, emit, log)

	// All universes start from blackout.
	eng.Blackout()

	in, err := midiin.NewInput(log, eng, cfg.MIDI.Port, cfg.MIDI.ClientName)
	if err != nil {
		log.With(logger.Fields{"module": "midi"}).Errorf("error while creating the MIDI input. %v", err)
		os.Exit(1)
	}
	if err = in.Start(ctx); err != nil {
		log.Error("failed to start MIDI input:", err.Error())
		cancel()
	}

	if cfg.MIDI.CC {
		log.Info("Listening for MIDI CC")
	}
	if cfg.MIDI.Note {
		log.Info("Listening for MIDI Note-On")
	}

	<-ctx.Done()

	in.Stop()

	if pub != nil {
		if err = pub.Stop(); err != nil {
			log.Error("failed to stop MQTT service:", err.Error())
		}
	}

	sender.Stop()

	log.Info("shutdown complete")
}

// ConvertConfigMonitor converts the structures.
func ConvertConfigMonitor(cfg config.MQTTConf) monitor.Conf {
	return monitor.Conf{
		ClientID: cfg.ClientID,
		Schema:   "tcp",
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Qos:      cfg.Qos,
		Topic:    cfg.Topic,
	}
}

// enabledChannels renders the channel mask as the 1-based list shown
// at startup.
func enabledChannels(mask uint16) string {
	var parts []string
	for ch := 0; ch < 16; ch++ {
		if mask&(1<<ch) != 0 {
			parts = append(parts, strconv.Itoa(ch+1))
		}
	}
	return strings.Join(parts, ", ")
}
