package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"code.hybscloud.com/iox"
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
	pub, err := interprocess.NewPublisher(interprocess.NewOptions(cfg.Queue.Name, opts...))
	if err != nil {
		log.Fatalf("open publisher: %v", err)
	}
	defer pub.Close()

	msg := make([]byte, cfg.Flood.MessageSize)
	for i := range msg {
		msg[i] = byte(i)
	}

	n := cfg.Flood.Count
	log.Printf("start publisher name=%s count=%d size=%d",
		cfg.Queue.Name, n, len(msg))

	before := time.Now()
	fullCount := 0
	backoff := iox.Backoff{}
	for i := 0; i < n; i++ {
		for !pub.TryEnqueue(msg) {
			fullCount++
			backoff.Wait()
		}
		backoff.Reset()

		if i > 0 && i%5_000_000 == 0 {
			fmt.Printf("sent=%d full-backoffs=%d elapsed=%.3fs\n",
				i, fullCount, time.Since(before).Seconds())
		}
	}

	elapsed := time.Since(before)
	fmt.Printf("done: %d messages in %.3fs (%.0f msg/s, %d full-backoffs)\n",
		n, elapsed.Seconds(), float64(n)/elapsed.Seconds(), fullCount)
}
