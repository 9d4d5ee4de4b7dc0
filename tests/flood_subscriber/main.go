package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StirlingLabs/interprocess"
	"github.com/StirlingLabs/interprocess/tests/floodcfg"
)

func main() {
	cfgPath := flag.String("config", "", "TOML config file")
	name := flag.String("name", "", "queue name (overrides config)")
	count := flag.Int("count", 0, "number of messages (overrides config)")
	flag.Parse()

	cfg, err := floodcfg.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *name != "" {
		cfg.Queue.Name = *name
	}
	if *count > 0 {
		cfg.Flood.Count = *count
	}

	opts := []interprocess.Opt{interprocess.WithCapacity(cfg.Queue.Capacity)}
	if cfg.Queue.Path != "" {
		opts = append(opts, interprocess.WithPath(cfg.Queue.Path))
	}
	sub, err := interprocess.NewSubscriber(interprocess.NewOptions(cfg.Queue.Name, opts...))
	if err != nil {
		log.Fatalf("open subscriber: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := cfg.Flood.Count
	log.Printf("start subscriber name=%s count=%d", cfg.Queue.Name, n)

	buf := make([]byte, cfg.Flood.MessageSize)
	var before time.Time
	received := 0
	for received < n {
		msg, err := sub.Dequeue(ctx, buf)
		if err != nil {
			log.Printf("stopped after %d messages: %v", received, err)
			return
		}
		if received == 0 {
			before = time.Now()
		}
		if len(msg) != cfg.Flood.MessageSize {
			log.Fatalf("message %d has size %d, want %d",
				received, len(msg), cfg.Flood.MessageSize)
		}
		received++

		if received%5_000_000 == 0 {
			fmt.Printf("received=%d elapsed=%.3fs\n",
				received, time.Since(before).Seconds())
		}
	}

	elapsed := time.Since(before)
	fmt.Printf("done: %d messages in %.3fs (%.0f msg/s)\n",
		received, elapsed.Seconds(), float64(received)/elapsed.Seconds())
}
