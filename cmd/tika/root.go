/*
Copyright 2017 Google Inc. All rights reserved.
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

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-tika/tika-client/internal/config"
	"github.com/go-tika/tika-client/internal/logger"
	"github.com/go-tika/tika-client/tika"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	serverURL  string
	serverJAR  string
	port       string
	compress   bool
	logLevel   string
	json       bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "tika",
		Short:         "Extract text and metadata with Apache Tika Server",
		Long:          "tika sends documents to a running Tika Server, or one started from --server-jar, and prints the decoded metadata.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a TOML config file (default ./"+config.DefaultConfigFile+" if present)")
	pf.StringVar(&g.serverURL, "server-url", "", "URL of the Tika Server")
	pf.StringVar(&g.serverJAR, "server-jar", "", "Path to a Tika Server JAR to start instead of using --server-url")
	pf.StringVar(&g.port, "port", "", "Port for the server started from --server-jar (default 9998)")
	pf.BoolVar(&g.compress, "compress", false, "Gzip request bodies and accept gzip responses")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.BoolVar(&g.json, "json", false, "Print the raw metadata as JSON")

	root.AddCommand(
		newParseCmd(g),
		newMetaCmd(g),
		newRmetaCmd(g),
		newVersionCmd(g),
	)
	return root
}

// session holds what a subcommand needs to talk to a server.
type session struct {
	client    *tika.Client
	server    *tika.Server
	log       *logrus.Logger
	maxUpload int64
}

// open resolves the configuration, in order file, environment, flags,
// and starts a local server when a JAR is configured.
func (g *globalFlags) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("server-url") {
		cfg.Server.URL = g.serverURL
	}
	if flags.Changed("server-jar") {
		cfg.Server.JAR = g.serverJAR
	}
	if flags.Changed("port") {
		cfg.Server.Port = g.port
	}
	if flags.Changed("compress") {
		cfg.Server.Compress = g.compress
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = config.LogLevel(g.logLevel)
	}

	log, err := logger.New(&cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	s := &session{log: log, maxUpload: cfg.Server.MaxUploadSizeBytes()}
	if cfg.Server.JAR != "" {
		srv, err := tika.NewServer(cfg.Server.JAR, cfg.Server.Port)
		if err != nil {
			return nil, err
		}
		srv.Logger = log
		for k, v := range cfg.Server.JavaProps {
			srv.JavaProps[k] = v
		}
		if err := srv.Start(cmd.Context()); err != nil {
			return nil, fmt.Errorf("could not start server: %w", err)
		}
		s.server = srv
		cfg.Server.URL = srv.URL()
	}

	s.client = tika.NewClient(
		&http.Client{Timeout: cfg.Server.TimeoutDuration()},
		cfg.Server.URL,
		tika.WithUserAgent(cfg.Server.UserAgent),
		tika.WithCompression(cfg.Server.Compress),
		tika.WithLogger(log),
		tika.WithDecoder(tika.NewDecoder(log)),
	)
	return s, nil
}

// checkUpload rejects files larger than the configured upload limit.
func (s *session) checkUpload(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > s.maxUpload {
		return fmt.Errorf("%s is %s, larger than the %s upload limit",
			path, units.HumanSize(float64(fi.Size())), units.HumanSize(float64(s.maxUpload)))
	}
	return nil
}

// close stops the local server, if any.
func (s *session) close() {
	if s.server == nil {
		return
	}
	if err := s.server.Stop(); err != nil {
		s.log.WithError(err).Warn("tika: failed to stop server")
	}
}
