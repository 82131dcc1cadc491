/*
Copyright 2017 Google Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the tika command's configuration from a TOML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/go-tika/tika-client/tika"
)

const (
	// DefaultConfigFile is read when no path is given. It may be absent.
	DefaultConfigFile = "tika.toml"

	EnvURL       = "TIKA_URL"
	EnvTimeout   = "TIKA_TIMEOUT"
	EnvUserAgent = "TIKA_USER_AGENT"
	EnvCompress  = "TIKA_COMPRESS"
	EnvLogLevel  = "TIKA_LOG_LEVEL"
	EnvLogFormat = "TIKA_LOG_FORMAT"

	EnvMaxUploadSize = "TIKA_MAX_UPLOAD_SIZE"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig describes how to reach, or start, a Tika Server.
type ServerConfig struct {
	URL       string `toml:"url"`
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
	Compress  bool   `toml:"compress"`
	// MaxUploadSize bounds the files the command sends, e.g. "100MB".
	MaxUploadSize    string `toml:"max_upload_size"`
	maxUploadSizeVal int64
	// JAR, when set, starts a local server on Port instead of using URL.
	JAR       string            `toml:"jar"`
	Port      string            `toml:"port"`
	JavaProps map[string]string `toml:"java_props"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (s *ServerConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.Timeout)
	return d
}

// MaxUploadSizeBytes returns MaxUploadSize as parsed by Finalize.
func (s *ServerConfig) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeVal
}

// LogLevel names a logging threshold.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ToLogrusLevel converts l, defaulting to logrus.ErrorLevel.
func (l LogLevel) ToLogrusLevel() logrus.Level {
	switch l {
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelInfo:
		return logrus.InfoLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	}
	return logrus.ErrorLevel
}

// LogFormat selects the log encoding.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  LogLevel  `toml:"level"`
	Format LogFormat `toml:"format"`
}

// Load reads the configuration at path. An empty path reads
// DefaultConfigFile if it exists and otherwise returns an empty Config.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

func (c *Config) loadDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = "http://localhost:9998"
	}
	if c.Server.Timeout == "" {
		c.Server.Timeout = "30s"
	}
	if c.Server.UserAgent == "" {
		c.Server.UserAgent = tika.DefaultUserAgent
	}
	if c.Server.MaxUploadSize == "" {
		c.Server.MaxUploadSize = "100MB"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelError
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}

func (c *Config) loadEnv() error {
	if v := os.Getenv(EnvURL); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		c.Server.Timeout = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.Server.UserAgent = v
	}
	if v := os.Getenv(EnvCompress); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCompress, err)
		}
		c.Server.Compress = b
	}
	if v := os.Getenv(EnvMaxUploadSize); v != "" {
		c.Server.MaxUploadSize = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = LogLevel(strings.ToLower(v))
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = LogFormat(strings.ToLower(v))
	}
	return nil
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.Server.Timeout); err != nil {
		return fmt.Errorf("invalid server.timeout: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("invalid server.timeout: %s is not positive", c.Server.Timeout)
	}
	size, err := units.FromHumanSize(c.Server.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid server.max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid server.max_upload_size: %s is not positive", c.Server.MaxUploadSize)
	}
	c.Server.maxUploadSizeVal = size

	return c.Logging.Validate()
}

// Validate reports an unknown level or format.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid logging.level %q", l.Level)
	}
	switch l.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid logging.format %q", l.Format)
	}
	return nil
}
