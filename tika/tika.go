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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultUserAgent is sent as the User-Agent header unless WithUserAgent is
// given.
const DefaultUserAgent = "tika-client/" + ClientVersion

// ClientVersion is the version of this package.
const ClientVersion = "0.6.0"

// Client represents a connection to a Tika Server. A Client is safe for
// concurrent use; each call makes exactly one request.
type Client struct {
	// url is the URL of the Tika Server, including the port (if necessary), but
	// not the trailing slash. For example, http://localhost:9998.
	url string
	// httpClient is the client that will be used to call the Tika Server.
	// Since http.Clients are thread safe, the same client will be used for all
	// requests by this Client.
	httpClient *http.Client
	userAgent  string
	compress   bool
	log        logrus.FieldLogger
	decoder    *Decoder
}

// An Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithCompression enables gzip compression of uploaded content larger than
// MinCompressLen, and asks the server for gzip responses.
func WithCompression(on bool) Option {
	return func(c *Client) { c.compress = on }
}

// WithLogger sets the logger used for requests and for decoding warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// WithDecoder sets the Decoder used for responses. By default the Client
// builds one from its logger.
func WithDecoder(d *Decoder) Option {
	return func(c *Client) { c.decoder = d }
}

// NewClient creates a new Client. If httpClient is nil, the http.DefaultClient will be
// used.
func NewClient(httpClient *http.Client, urlString string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		url:        strings.TrimRight(urlString, "/"),
		userAgent:  DefaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = discardLogger()
	}
	if c.decoder == nil {
		c.decoder = NewDecoder(c.log)
	}
	return c
}

// Format selects how the server renders X-TIKA:content.
type Format int

// Content formats.
const (
	FormatHTML Format = iota
	FormatText
)

func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "html"
}

// Parse sends the content of input to the /tika endpoint and decodes the
// result. mimeType may be empty, in which case the server detects it. If
// the error is not nil, the result is undefined.
func (c *Client) Parse(ctx context.Context, input io.Reader, mimeType string, f Format) (Decoded, error) {
	path := "/tika"
	if f == FormatText {
		path = "/tika/text"
	}
	body, err := c.putContent(ctx, path, input, mimeType)
	if err != nil {
		return nil, err
	}
	return c.decode(body)
}

// ParseFile uploads the file at path to the /tika form endpoint and decodes
// the result. If mimeType is empty, it is detected from the file.
func (c *Client) ParseFile(ctx context.Context, path, mimeType string, f Format) (Decoded, error) {
	endpoint := "/tika/form"
	if f == FormatText {
		endpoint = "/tika/form/text"
	}
	body, err := c.postMultipart(ctx, endpoint, path, mimeType)
	if err != nil {
		return nil, err
	}
	return c.decode(body)
}

// Meta sends the content of input to the /meta endpoint, returning the
// metadata without the document body.
func (c *Client) Meta(ctx context.Context, input io.Reader, mimeType string) (Decoded, error) {
	body, err := c.putContent(ctx, "/meta", input, mimeType)
	if err != nil {
		return nil, err
	}
	return c.decode(body)
}

// MetaFile uploads the file at path to the /meta form endpoint.
func (c *Client) MetaFile(ctx context.Context, path, mimeType string) (Decoded, error) {
	body, err := c.postMultipart(ctx, "/meta/form", path, mimeType)
	if err != nil {
		return nil, err
	}
	return c.decode(body)
}

// Recursive parses input and every embedded document using the /rmeta
// endpoint. The result has one element per document, the container first,
// in the order returned by the server.
func (c *Client) Recursive(ctx context.Context, input io.Reader, mimeType string, f Format) ([]Decoded, error) {
	path := "/rmeta"
	if f == FormatText {
		path = "/rmeta/text"
	}
	body, err := c.putContent(ctx, path, input, mimeType)
	if err != nil {
		return nil, err
	}
	return c.decodeAll(body)
}

// RecursiveFile uploads the file at path to the /rmeta form endpoint. See
// Recursive.
func (c *Client) RecursiveFile(ctx context.Context, path, mimeType string, f Format) ([]Decoded, error) {
	endpoint := "/rmeta/form/html"
	if f == FormatText {
		endpoint = "/rmeta/form/text"
	}
	body, err := c.postMultipart(ctx, endpoint, path, mimeType)
	if err != nil {
		return nil, err
	}
	return c.decodeAll(body)
}

// ParseRecursive parses the given input and all embedded documents, returning a
// list of the plain text contents with one element per document which has
// content. See Recursive for access to all metadata fields. If the error is
// not nil, the result is undefined.
func (c *Client) ParseRecursive(ctx context.Context, input io.Reader) ([]string, error) {
	docs, err := c.Recursive(ctx, input, "", FormatText)
	if err != nil {
		return nil, err
	}
	var r []string
	for _, d := range docs {
		if content := d.Base().Content; content != nil && *content != "" {
			r = append(r, *content)
		}
	}
	return r, nil
}

var textHeader = http.Header{"Accept": []string{"text/plain"}}

// Version returns the default hello message from Tika server.
func (c *Client) Version(ctx context.Context) (string, error) {
	return c.callString(ctx, nil, http.MethodGet, "/version", textHeader)
}

func (c *Client) decode(body []byte) (Decoded, error) {
	var m Metadata
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return c.decoder.Decode(m)
}

func (c *Client) decodeAll(body []byte) ([]Decoded, error) {
	var ms []Metadata
	if err := json.Unmarshal(body, &ms); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return c.decoder.DecodeAll(ms)
}
