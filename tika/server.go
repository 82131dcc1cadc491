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

package tika

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Server represents a Tika server. Create a new Server with NewServer,
// start it with Start, and shut it down with Stop.
// There is no need to create a Server for an already running Tika Server
// since you can pass its URL directly to a Client.
type Server struct {
	// Logger receives start and stop events. If nil, nothing is logged.
	Logger logrus.FieldLogger
	// JavaProps are passed to the JVM as -Dkey=value.
	JavaProps map[string]string

	jar    string
	url    string // url is derived from port.
	port   string
	cmd    *exec.Cmd
	stderr bytes.Buffer
}

// URL returns the URL of this Server.
func (s *Server) URL() string {
	return s.url
}

// NewServer creates a new Server for the given JAR. The default port is
// 9998.
func NewServer(jar, port string) (*Server, error) {
	if jar == "" {
		return nil, errors.New("no jar file specified")
	}
	if _, err := os.Stat(jar); err != nil {
		return nil, fmt.Errorf("jar file: %w", err)
	}
	if port == "" {
		port = "9998"
	}
	u, err := url.Parse("http://localhost:" + port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", port, err)
	}
	return &Server{jar: jar, port: port, url: u.String(), JavaProps: map[string]string{}}, nil
}

var command = exec.Command

func (s *Server) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return discardLogger()
	}
	return s.Logger
}

// Start starts a new Java process running the server and waits until it
// answers requests or ctx is done. The caller must call Stop to shut the
// process down when finished with the Server.
func (s *Server) Start(ctx context.Context) error {
	if _, err := os.Stat(s.jar); err != nil {
		return fmt.Errorf("jar file: %w", err)
	}
	cmd := command("java", s.args()...)
	s.stderr.Reset()
	cmd.Stderr = &s.stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	s.cmd = cmd
	log := s.logger().WithFields(logrus.Fields{"jar": s.jar, "port": s.port})
	log.Info("tika: server starting")

	if err := s.waitForStart(ctx); err != nil {
		s.Stop()
		// Report stderr since sometimes the server says why it failed to start.
		return fmt.Errorf("error starting server: %w\nserver stderr:\n\n%s", err, s.stderr.String())
	}
	log.Info("tika: server ready")
	return nil
}

// args returns the java arguments with properties in key order.
func (s *Server) args() []string {
	keys := make([]string, 0, len(s.JavaProps))
	for k := range s.JavaProps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var args []string
	for _, k := range keys {
		args = append(args, fmt.Sprintf("-D%s=%s", k, s.JavaProps[k]))
	}
	return append(args, "-jar", s.jar, "-p", s.port)
}

// waitForStart waits until the given Server is responding to requests or
// ctx is Done().
func (s *Server) waitForStart(ctx context.Context) error {
	c := NewClient(nil, s.url)
	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if _, err := c.Version(ctx); err == nil {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop shuts the server down, killing the underlying Java process. Stop
// must be called when finished with the server to avoid leaking the
// Java process.
func (s *Server) Stop() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return errors.New("server not started")
	}
	cmd := s.cmd
	s.cmd = nil
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("could not kill server: %w", err)
	}
	// A killed process always exits with an error; only report failures to
	// reap it.
	var exitErr *exec.ExitError
	if err := cmd.Wait(); err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("could not wait for server to finish: %w", err)
	}
	s.logger().WithField("port", s.port).Info("tika: server stopped")
	return nil
}
