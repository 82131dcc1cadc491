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
	"bytes"
	"errors"
	"fmt"
	"os"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/go-tika/tika-client/tika"
)

// inputFlags select how a file is sent to the server.
type inputFlags struct {
	text     bool
	markdown bool
	buffer   bool
	mime     string
}

func (in *inputFlags) format() tika.Format {
	if in.text {
		return tika.FormatText
	}
	return tika.FormatHTML
}

// read loads path into memory for a PUT request. Without --mime the type
// is sniffed from the content.
func (in *inputFlags) read(path string) (*bytes.Reader, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	mime := in.mime
	if mime == "" {
		if m := mimetype.Detect(data); !m.Is("application/octet-stream") {
			mime = m.String()
		}
	}
	return bytes.NewReader(data), mime, nil
}

func newParseCmd(g *globalFlags) *cobra.Command {
	in := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a file and print its content and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.text && in.markdown {
				return errors.New("--text and --markdown are mutually exclusive")
			}
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.checkUpload(args[0]); err != nil {
				return err
			}

			var d tika.Decoded
			if in.buffer {
				r, mime, err := in.read(args[0])
				if err != nil {
					return err
				}
				d, err = s.client.Parse(cmd.Context(), r, mime, in.format())
				if err != nil {
					return fmt.Errorf("parse: %w", err)
				}
			} else {
				d, err = s.client.ParseFile(cmd.Context(), args[0], in.mime, in.format())
				if err != nil {
					return fmt.Errorf("parse: %w", err)
				}
			}
			if in.markdown {
				if err := toMarkdown(d); err != nil {
					return err
				}
			}
			return printOne(cmd.OutOrStdout(), d, g.json)
		},
	}
	cmd.Flags().BoolVar(&in.text, "text", false, "Request plain text content instead of XHTML")
	cmd.Flags().BoolVar(&in.markdown, "markdown", false, "Convert the XHTML content to Markdown")
	cmd.Flags().BoolVar(&in.buffer, "buffer", false, "Read the file into memory and send it as the request body")
	cmd.Flags().StringVar(&in.mime, "mime", "", "Content type of the file (detected if empty)")
	return cmd
}

// toMarkdown replaces the XHTML content of d, in both the typed field and
// the raw metadata, with its Markdown rendering.
func toMarkdown(d tika.Decoded) error {
	r := d.Base()
	if r.Content == nil {
		return nil
	}
	md, err := htmltomarkdown.ConvertString(*r.Content)
	if err != nil {
		return fmt.Errorf("convert to markdown: %w", err)
	}
	r.Content = &md
	r.Data[tika.KeyContent.String()] = tika.StringValue(md)
	return nil
}

func newMetaCmd(g *globalFlags) *cobra.Command {
	in := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "meta FILE",
		Short: "Print the metadata of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.checkUpload(args[0]); err != nil {
				return err
			}

			var d tika.Decoded
			if in.buffer {
				r, mime, err := in.read(args[0])
				if err != nil {
					return err
				}
				d, err = s.client.Meta(cmd.Context(), r, mime)
				if err != nil {
					return fmt.Errorf("meta: %w", err)
				}
			} else {
				d, err = s.client.MetaFile(cmd.Context(), args[0], in.mime)
				if err != nil {
					return fmt.Errorf("meta: %w", err)
				}
			}
			return printOne(cmd.OutOrStdout(), d, g.json)
		},
	}
	cmd.Flags().BoolVar(&in.buffer, "buffer", false, "Read the file into memory and send it as the request body")
	cmd.Flags().StringVar(&in.mime, "mime", "", "Content type of the file (detected if empty)")
	return cmd
}

func newRmetaCmd(g *globalFlags) *cobra.Command {
	in := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "rmeta FILE",
		Short: "Parse a file and its embedded documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.checkUpload(args[0]); err != nil {
				return err
			}

			docs, err := s.client.RecursiveFile(cmd.Context(), args[0], in.mime, in.format())
			if err != nil {
				return fmt.Errorf("rmeta: %w", err)
			}
			return printAll(cmd.OutOrStdout(), docs, g.json)
		},
	}
	cmd.Flags().BoolVar(&in.text, "text", false, "Request plain text content instead of XHTML")
	cmd.Flags().StringVar(&in.mime, "mime", "", "Content type of the file (detected if empty)")
	return cmd
}

func newVersionCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client and server versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			v, err := s.client.Version(cmd.Context())
			if err != nil {
				return fmt.Errorf("version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "client: %s\nserver: %s\n", tika.ClientVersion, v)
			return nil
		},
	}
}
