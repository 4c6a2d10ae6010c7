// ABOUTME: Entry point for the chrono clock widget
// ABOUTME: Parses CLI flags, resolves a time source, and starts the TUI
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/chronosync/chrono-go/internal/discovery"
	"github.com/chronosync/chrono-go/internal/timesource"
	"github.com/chronosync/chrono-go/internal/ui"
	"github.com/chronosync/chrono-go/internal/version"
	"github.com/chronosync/chrono-go/internal/widget"
)

var (
	sourceURL   = flag.String("source", "", "Time endpoint URL (http(s):// or ws(s)://)")
	useDiscover = flag.Bool("discover", false, "Find a time server via mDNS instead of --source")
	ntpServer   = flag.String("ntp", "", "Use an NTP server as the reference source")
	mode        = flag.String("mode", "digital", "Display mode: digital or analogue")
	configPath  = flag.String("config", "", "Widget YAML config file")
	logFile     = flag.String("log-file", "chrono-clock.log", "Log file path")
	tzMinutes   = flag.Int("timezone-minutes", 0, "Display timezone offset in minutes (clamped to ±840)")
	startPaused = flag.Bool("paused", false, "Start with the animation paused")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, stream frames as log lines")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file.
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	cfg, err := widget.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if flag.CommandLine.Changed("timezone-minutes") {
		cfg.TimezoneOffsetMinutes = *tzMinutes
	}
	if *startPaused {
		cfg.Paused = true
	}
	cfg.Clamp()

	sampler, sourceName, err := resolveSampler()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("Starting %s %s against %s", version.Product, version.Version, sourceName)

	if !useTUI {
		runHeadless(cfg, sampler)
		return
	}

	display := ui.DisplayDigital
	if *mode == "analogue" || *mode == "analog" {
		display = ui.DisplayAnalogue
	}

	var prog *tea.Program
	session := widget.NewSession(cfg, sampler, func(frame widget.Frame) {
		if prog != nil {
			prog.Send(ui.FrameMsg(frame))
		}
	})

	prog = ui.Run(ui.NewModel(session, cfg, display, sourceName))
	session.Start()

	if _, err := prog.Run(); err != nil {
		session.Close()
		log.Fatalf("TUI error: %v", err)
	}

	session.Close()
	log.Printf("Widget stopped")
}

// resolveSampler picks the reference time source from the flags.
func resolveSampler() (timesource.Sampler, string, error) {
	if *ntpServer != "" {
		return timesource.NewNTPSampler(*ntpServer), "ntp://" + *ntpServer, nil
	}

	if *useDiscover {
		url, err := discoverSource()
		if err != nil {
			return nil, "", err
		}
		return timesource.NewHTTPSampler(url), url, nil
	}

	if *sourceURL == "" {
		return nil, "", fmt.Errorf("no time source: pass --source, --discover, or --ntp")
	}

	if strings.HasPrefix(*sourceURL, "ws://") || strings.HasPrefix(*sourceURL, "wss://") {
		return timesource.NewWebSocketSampler(*sourceURL), *sourceURL, nil
	}
	return timesource.NewHTTPSampler(*sourceURL), *sourceURL, nil
}

// discoverSource browses mDNS and returns the first server's endpoint.
func discoverSource() (string, error) {
	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()

	if err := disc.Browse(); err != nil {
		return "", fmt.Errorf("mDNS browse failed: %w", err)
	}

	log.Printf("Browsing for time servers…")
	select {
	case server := <-disc.Servers():
		return server.URL(), nil
	case <-time.After(10 * time.Second):
		return "", fmt.Errorf("no time server found after 10 seconds")
	}
}

// runHeadless logs one line per frame instead of drawing a TUI.
func runHeadless(cfg widget.Config, sampler timesource.Sampler) {
	session := widget.NewSession(cfg, sampler, func(frame widget.Frame) {
		log.Printf("frame: %02d:%02d:%02d state=%s offset=%+.1fms ±%.1fms",
			frame.Hour, frame.Minute, frame.Second,
			frame.State, frame.OffsetMs, frame.RangeMs/2)
	})
	session.Start()
	defer session.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Printf("Shutdown signal received")
}
