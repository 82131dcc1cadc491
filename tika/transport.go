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
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context/ctxhttp"
)

// MinCompressLen is the smallest request body, in bytes, which is gzip
// compressed when compression is enabled.
const MinCompressLen = 1024

// uploadField is the multipart field name the Tika form endpoints read.
const uploadField = "upload-file"

// ClientError is returned by Client functions when the Tika server replies
// with a non-2xx status code.
type ClientError struct {
	StatusCode int
}

func (e ClientError) Error() string {
	return fmt.Sprintf("response code %d", e.StatusCode)
}

// call makes the given request to c and returns the result as a []byte and
// error. call returns an error if the response code is not 2xx.
func (c *Client) call(ctx context.Context, input io.Reader, method, path string, header http.Header) ([]byte, error) {
	req, err := http.NewRequest(method, c.url+path, input)
	if err != nil {
		return nil, err
	}
	req.Header = c.header()
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := ctxhttp.Do(ctx, c.httpClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"compressed": req.Header.Get("Content-Encoding") == "gzip",
	}).Debug("tika: request complete")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ClientError{resp.StatusCode}
	}

	body := io.Reader(resp.Body)
	// Setting Accept-Encoding by hand turns off net/http's transparent
	// decompression.
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading gzip response: %w", err)
		}
		defer zr.Close()
		body = zr
	}
	return io.ReadAll(body)
}

// callString makes the given request to c and returns the result as a string
// and error. callString returns an error if the response code is not 2xx.
func (c *Client) callString(ctx context.Context, input io.Reader, method, path string, header http.Header) (string, error) {
	body, err := c.call(ctx, input, method, path, header)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", c.userAgent)
	if c.compress {
		h.Set("Accept-Encoding", "gzip")
	}
	return h
}

// putContent PUTs the bytes of input to path. If mimeType is empty the
// server detects the type itself.
func (c *Client) putContent(ctx context.Context, path string, input io.Reader, mimeType string) ([]byte, error) {
	var content []byte
	if input != nil {
		var err error
		if content, err = io.ReadAll(input); err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
	}

	header := http.Header{}
	if c.compress && len(content) > MinCompressLen {
		z, err := compressBody(content)
		if err != nil {
			return nil, err
		}
		content = z
		header.Set("Content-Encoding", "gzip")
	}
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}
	// net/http derives Content-Length from the *bytes.Reader.
	return c.call(ctx, bytes.NewReader(content), http.MethodPut, path, header)
}

func compressBody(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, fmt.Errorf("compressing request: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing request: %w", err)
	}
	return buf.Bytes(), nil
}

// postMultipart uploads the file at path to the form endpoint. If
// mimeType is empty, the type is detected from the file contents.
func (c *Client) postMultipart(ctx context.Context, endpoint, path, mimeType string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if mimeType == "" {
		mimeType = detectMIME(path)
	}
	name := filepath.Base(path)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writePart(mw, f, name, mimeType))
	}()
	defer pr.Close()

	header := http.Header{}
	header.Set("Content-Type", mw.FormDataContentType())
	header.Set("Content-Disposition", contentDisposition(name, "attachment"))
	return c.call(ctx, pr, http.MethodPost, endpoint, header)
}

func writePart(mw *multipart.Writer, r io.Reader, name, mimeType string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="%s"`, uploadField, escapeQuotes(name)))
	if mimeType != "" {
		h.Set("Content-Type", mimeType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// detectMIME sniffs the type of the file at path, returning "" when
// nothing more specific than a byte stream is known.
func detectMIME(path string) string {
	m, err := mimetype.DetectFile(path)
	if err != nil || m.Is("application/octet-stream") {
		return ""
	}
	return m.String()
}

// contentDisposition returns a Content-Disposition header value naming
// filename. Non-ASCII names get an ASCII fallback, with '_' for each other
// rune, and an RFC 5987 filename* parameter.
func contentDisposition(filename, disposition string) string {
	if isASCII(filename) {
		return fmt.Sprintf(`%s; filename="%s"`, disposition, escapeQuotes(filename))
	}
	fallback := strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf || r == '?' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`, disposition, escapeQuotes(fallback), percentEncode(filename))
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// percentEncode encodes every byte of s except unreserved characters and
// '/'.
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '.', c == '_', c == '~', c == '/':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0xf])
		}
	}
	return b.String()
}
