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

// Package logger builds the logrus logger used by the tika command.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/go-tika/tika-client/internal/config"
)

// New returns a logger configured by cfg writing to out. A nil out
// writes to stderr so that command output on stdout stays clean.
func New(cfg *config.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(out)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	l.SetLevel(cfg.Level.ToLogrusLevel())

	if cfg.Format == config.LogFormatJSON {
		l.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}
