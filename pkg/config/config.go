package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	xdgAppName = "workbench"
	configFile = "config.json"
)

// Config holds the settings of the workbench command. AgentBucket and
// DocsBucket are the buckets of tasks that name none.
type Config struct {
	AgentBucket     string `json:"agentBucket" env:"AGENT_BUCKET"`
	DocsBucket      string `json:"docsBucket" env:"DOCS_BUCKET"`
	SessionFile     string `json:"sessionFile" env:"SESSION_FILE"`
	ResourceDir     string `json:"resourceDir" env:"RESOURCE_DIR"`
	ListPrefix      string `json:"listPrefix" env:"LIST_PREFIX"`
	LogLevel        string `json:"logLevel" env:"LOG_LEVEL"`
	RecentResources int    `json:"recentResources" env:"RECENT_RESOURCES"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	dir := configDir()
	return &Config{
		AgentBucket:     "Orchestrator",
		DocsBucket:      "Docs",
		SessionFile:     filepath.Join(dir, "session.json"),
		ResourceDir:     filepath.Join(dir, "resources"),
		ListPrefix:      "Workbench: ",
		LogLevel:        "info",
		RecentResources: 16,
	}
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+xdgAppName)
	}
	return filepath.Join(home, ".config", xdgAppName)
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, configFile), nil
}

// Load reads the config file, fills unset fields with defaults and applies
// WORKBENCH_* environment overrides.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "WORKBENCH_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ReadFile reads the config file over the defaults, ignoring the
// environment. A missing file yields the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	var fromFile Config
	if err := json.NewDecoder(f).Decode(&fromFile); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.merge(&fromFile)
	return cfg, nil
}

// merge copies the fields that are set in other.
func (c *Config) merge(other *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.AgentBucket, other.AgentBucket)
	set(&c.DocsBucket, other.DocsBucket)
	set(&c.SessionFile, other.SessionFile)
	set(&c.ResourceDir, other.ResourceDir)
	set(&c.ListPrefix, other.ListPrefix)
	set(&c.LogLevel, other.LogLevel)
	if other.RecentResources > 0 {
		c.RecentResources = other.RecentResources
	}
}

func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
