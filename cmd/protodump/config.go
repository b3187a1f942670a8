package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type dumpConfig struct {
	MaxDepth   int
	JSON       bool
	GRPCFrames bool
	Parallel   int
	LogLevel   string
}

func defaultDumpConfig() dumpConfig {
	return dumpConfig{
		MaxDepth: 16,
		Parallel: 4,
		LogLevel: "info",
	}
}

type fileConfig struct {
	MaxDepth   int    `toml:"max_depth"`
	JSON       bool   `toml:"json"`
	GRPCFrames bool   `toml:"grpc_frames"`
	Parallel   int    `toml:"parallel"`
	LogLevel   string `toml:"log_level"`
}

// loadDumpConfig applies the keys present in the TOML file at path on top of
// the defaults.
func loadDumpConfig(path string) (dumpConfig, error) {
	cfg := defaultDumpConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return dumpConfig{}, fmt.Errorf("load protodump config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return dumpConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	if meta.IsDefined("max_depth") {
		if raw.MaxDepth < 0 {
			return dumpConfig{}, fmt.Errorf("max_depth must not be negative, got %d", raw.MaxDepth)
		}
		cfg.MaxDepth = raw.MaxDepth
	}

	if meta.IsDefined("json") {
		cfg.JSON = raw.JSON
	}

	if meta.IsDefined("grpc_frames") {
		cfg.GRPCFrames = raw.GRPCFrames
	}

	if meta.IsDefined("parallel") {
		if raw.Parallel < 1 {
			return dumpConfig{}, fmt.Errorf("parallel must be at least 1, got %d", raw.Parallel)
		}
		cfg.Parallel = raw.Parallel
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	return cfg, nil
}
