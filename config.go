package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v2"
)

type Bedrock struct {
	AirID          uint32 `yaml:"air_id"`
	WaterID        uint32 `yaml:"water_id"`
	ExtendedHeight bool   `yaml:"extended_height"`
}

type Cache struct {
	MaxColumns int `yaml:"max_columns"`
}

type Config struct {
	Bedrock  Bedrock `yaml:"bedrock"`
	Mappings string  `yaml:"mappings"`
	Cache    Cache   `yaml:"cache"`
	Debug    bool    `yaml:"debug"`
	Output   string  `yaml:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		Bedrock: Bedrock{
			AirID:          0,
			WaterID:        0,
			ExtendedHeight: true,
		},
		Mappings: "mappings.yml",
		Cache: Cache{
			MaxColumns: 1024,
		},
		Debug:  false,
		Output: "chunks.dump",
	}
}

// LoadConfig reads path, writing the defaults there first if it is missing.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		config := DefaultConfig()
		file, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		e := yaml.NewEncoder(file)
		if err := e.Encode(config); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
		return config, e.Close()
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := DefaultConfig()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return config, nil
}
