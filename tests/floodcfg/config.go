// Package floodcfg loads the configuration shared by the flood harness
// programs: a TOML file with .env / environment overrides.
package floodcfg

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Queue Queue `toml:"queue"`
	Flood Flood `toml:"flood"`
}

type Queue struct {
	Name     string `toml:"name"`
	Path     string `toml:"path"`
	Capacity int64  `toml:"capacity"`
}

type Flood struct {
	MessageSize int `toml:"message_size"`
	Count       int `toml:"count"`
}

// Load reads the TOML file at path (optional) and applies environment
// overrides, including any .env file in the working directory.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Queue: Queue{Name: "flood", Capacity: 1 << 20},
		Flood: Flood{MessageSize: 100, Count: 1_000_000},
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := toml.Unmarshal(b, c); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("FLOOD_QUEUE_NAME"); v != "" {
		c.Queue.Name = v
	}
	if v := os.Getenv("FLOOD_QUEUE_PATH"); v != "" {
		c.Queue.Path = v
	}
	if v := os.Getenv("FLOOD_QUEUE_CAPACITY"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		c.Queue.Capacity = n
	}
	if v := os.Getenv("FLOOD_MESSAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		c.Flood.MessageSize = n
	}
	if v := os.Getenv("FLOOD_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		c.Flood.Count = n
	}
	return c, nil
}
