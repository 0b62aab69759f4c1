package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	NATS    NATSConfig    `yaml:"nats"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig selects and parameterizes a backend. Type is one of
// in_memory, local_disk, badger.
type StorageConfig struct {
	Type   string       `yaml:"type"`
	Path   string       `yaml:"path"`   // local_disk store file
	Format string       `yaml:"format"` // local_disk encoding: json or gob
	Badger BadgerConfig `yaml:"badger"`
}

type BadgerConfig struct {
	Directory string `yaml:"directory"`
}

// NATSConfig configures the mutation event emitter. An empty URL disables it.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Set defaults
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Storage.Type == "" {
		config.Storage.Type = "in_memory"
	}
	if config.Storage.Path == "" {
		config.Storage.Path = "kv.json"
	}
	if config.Storage.Format == "" {
		config.Storage.Format = "json"
	}
	if config.Storage.Badger.Directory == "" {
		config.Storage.Badger.Directory = "kv-badger"
	}
	if config.NATS.Subject == "" {
		config.NATS.Subject = "kvstore.events"
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}

	return &config, nil
}
