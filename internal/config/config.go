//
// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads settings for the smoke binary and the connect server
// from the environment, an optional YAML file and command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAppName    = "TestApp"
	DefaultMaster     = "local[1]"
	DefaultListenAddr = ":15002"
)

// Config holds the session settings for the smoke run.
type Config struct {
	AppName  string            `yaml:"app_name"`
	Master   string            `yaml:"master"`
	Remote   string            `yaml:"remote"`   // sc:// connection string; wins over Master
	LogLevel string            `yaml:"log_level"` // debug, info, warn, error (default "info")
	Conf     map[string]string `yaml:"conf"`      // extra spark conf applied to the session
}

// LoadFromEnv reads the optional YAML file named by SPARK_CONF_FILE and then
// applies SPARK_APP_NAME, SPARK_MASTER, SPARK_REMOTE and LOG_LEVEL on top.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if path := os.Getenv("SPARK_CONF_FILE"); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := os.Getenv("SPARK_APP_NAME"); v != "" {
		cfg.AppName = v
	}
	if v := os.Getenv("SPARK_MASTER"); v != "" {
		cfg.Master = v
	}
	if v := os.Getenv("SPARK_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile parses a YAML config file. Unset fields keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.Master == "" && c.Remote == "" {
		c.Master = DefaultMaster
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel)
}

// ServerConfig holds the settings for the standalone connect server.
type ServerConfig struct {
	ListenAddr string
	Threads    int
	BatchSize  int
	Token      string
	LogLevel   string
}

// LoadServerFromEnv reads LISTEN_ADDR, SPARK_THREADS, SPARK_BATCH_SIZE,
// SPARK_CONNECT_TOKEN and LOG_LEVEL.
func LoadServerFromEnv() (*ServerConfig, error) {
	cfg := &ServerConfig{
		ListenAddr: os.Getenv("LISTEN_ADDR"),
		Token:      os.Getenv("SPARK_CONNECT_TOKEN"),
		LogLevel:   os.Getenv("LOG_LEVEL"),
	}
	if v := os.Getenv("SPARK_THREADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SPARK_THREADS: %w", err)
		}
		cfg.Threads = n
	}
	if v := os.Getenv("SPARK_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SPARK_BATCH_SIZE: %w", err)
		}
		cfg.BatchSize = n
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, cfg.Validate()
}

// BindFlags registers flags that override the values already in c.
func (c *ServerConfig) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "address to serve Spark Connect on")
	fs.IntVar(&c.Threads, "threads", c.Threads, "DuckDB worker threads (0 = all cores)")
	fs.IntVar(&c.BatchSize, "batch-size", c.BatchSize, "rows per Arrow batch (0 = default)")
	fs.StringVar(&c.Token, "token", c.Token, "bearer token required from clients")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
}

func (c *ServerConfig) Validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch size must not be negative, got %d", c.BatchSize)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *ServerConfig) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
