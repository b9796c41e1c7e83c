// Package config loads process configuration for the naming and
// storage services from a YAML file, following the shape of
// upspin.io/config's file-based loader: known keys with sensible
// defaults, overridable by the caller. SPEC_FULL.md §6/§8.
package config

import (
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ewanas/DFS/errors"
)

// Well-known ports the naming core binds its two skeletons to, shared
// by every process that needs to dial the naming service directly
// (SPEC_FULL.md §6).
const (
	RegistrationPort = 7777
	ServicePort      = 7778
)

// Config is the process configuration for a naming or storage server.
type Config struct {
	// NamingHost is the host the naming service's registration and
	// service skeletons are reachable on.
	NamingHost string `yaml:"naming_host"`
	// StorageRoot is the local directory a storage server serves its
	// files from.
	StorageRoot string `yaml:"storage_root"`
	// StorageHost is the host a storage server's skeletons bind to;
	// empty lets the OS pick.
	StorageHost string `yaml:"storage_host"`
	// LogLevel is one of "debug", "info", "error", "disabled".
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with every field set to its default value.
func Default() Config {
	return Config{
		NamingHost:  "127.0.0.1",
		StorageRoot: ".",
		StorageHost: "",
		LogLevel:    "info",
	}
}

// Load reads a YAML configuration from r, applying Default() for any
// field the document leaves unset (zero-valued).
func Load(r io.Reader) (Config, error) {
	const op = "config.Load"
	cfg := Default()

	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, errors.E(op, errors.Other, err)
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.E(op, errors.InvalidArgument, err)
	}
	if cfg.NamingHost == "" {
		cfg.NamingHost = Default().NamingHost
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = Default().StorageRoot
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	return cfg, nil
}

// LoadFile opens name and loads a Config from it. NotFound is reported
// if the file does not exist.
func LoadFile(name string) (Config, error) {
	const op = "config.LoadFile"
	f, err := os.Open(name)
	if os.IsNotExist(err) {
		return Config{}, errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return Config{}, errors.E(op, errors.Other, err)
	}
	defer f.Close()
	return Load(f)
}
