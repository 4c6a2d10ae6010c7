// ABOUTME: Entry point for the chrono reference time server
// ABOUTME: Serves the time echo endpoint and optionally advertises via mDNS
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/chronosync/chrono-go/internal/server"
	"github.com/chronosync/chrono-go/internal/version"
)

var (
	port        = flag.Int("port", 8123, "HTTP port")
	name        = flag.String("name", "", "Server friendly name (default: hostname-chrono)")
	enableMDNS  = flag.Bool("mdns", true, "Advertise the server via mDNS")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s server %s\n", version.Product, version.Version)
		return
	}

	serverName := *name
	if serverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serverName = fmt.Sprintf("%s-chrono", hostname)
	}

	srv := server.New(server.Config{
		Port:       *port,
		Name:       serverName,
		EnableMDNS: *enableMDNS,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("Received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Printf("Server stopped")
}
