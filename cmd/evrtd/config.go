package main

import (
	"github.com/BurntSushi/toml"
)

// config is the on-disk shape for evrtd's --config file. A flag given a
// non-empty value (for --trace, true) overrides the file's setting; an
// empty flag or --trace=false leaves the file's value in place.
type config struct {
	Addr        string `toml:"addr"`
	Backend     string `toml:"backend"`
	Trace       bool   `toml:"trace"`
	MetricsAddr string `toml:"metrics_addr"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
