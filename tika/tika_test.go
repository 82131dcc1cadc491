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
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// errorServer always responds with http.StatusInternalServerError.
var errorServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusInternalServerError)
}))

var errorClient = NewClient(nil, errorServer.URL)

func TestMain(m *testing.M) {
	r := m.Run()
	errorServer.Close()
	os.Exit(r)
}

const odtResponse = `{
	"Content-Type": "application/vnd.oasis.opendocument.text",
	"X-TIKA:Parsed-By": ["org.apache.tika.parser.DefaultParser", "org.apache.tika.parser.odf.OpenDocumentParser"],
	"X-TIKA:content": "<body><p>This is a document created by LibreOffice Writer</p>\n</body>",
	"Content-Length": "11149",
	"dcterms:created": "2023-07-19T11:30:44.719"
}`

// request records what a fake Tika server received.
type request struct {
	method string
	path   string
	header http.Header
	body   []byte
}

// recorder returns a server which always answers with response and
// stores the last request in got.
func recorder(t *testing.T, response string, got *request) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		*got = request{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: body}
		fmt.Fprint(w, response)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestCallError(t *testing.T) {
	tests := []struct {
		method string
		url    string
	}{
		{"bad method", ""},
		{"GET", "https://unknown_test_url"},
	}
	for _, test := range tests {
		c := NewClient(nil, test.url)
		if _, err := c.call(context.Background(), nil, test.method, "", nil); err == nil {
			t.Errorf("call(%q, %q) got no error, want error", test.method, test.url)
		}
	}
}

func TestClientError(t *testing.T) {
	_, err := errorClient.Meta(context.Background(), strings.NewReader("x"), "")
	var ce ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("Meta got error %v, want ClientError", err)
	}
	if ce.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", ce.StatusCode, http.StatusInternalServerError)
	}
}

func TestDefaultHeaders(t *testing.T) {
	var got request
	ts := recorder(t, odtResponse, &got)

	if _, err := NewClient(nil, ts.URL+"/").Meta(context.Background(), nil, ""); err != nil {
		t.Fatalf("Meta got error: %v", err)
	}
	if got.path != "/meta" {
		t.Errorf("path = %q, want /meta (trailing slash trimmed)", got.path)
	}
	if a := got.header.Get("Accept"); a != "application/json" {
		t.Errorf("Accept = %q, want application/json", a)
	}
	if ua := got.header.Get("User-Agent"); ua != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", ua, DefaultUserAgent)
	}

	if _, err := NewClient(nil, ts.URL, WithUserAgent("custom/1")).Meta(context.Background(), nil, ""); err != nil {
		t.Fatalf("Meta got error: %v", err)
	}
	if ua := got.header.Get("User-Agent"); ua != "custom/1" {
		t.Errorf("User-Agent = %q, want custom/1", ua)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		format   Format
		mimeType string
		wantPath string
	}{
		{FormatHTML, "", "/tika"},
		{FormatText, "application/vnd.oasis.opendocument.text", "/tika/text"},
	}
	for _, test := range tests {
		var got request
		ts := recorder(t, odtResponse, &got)
		c := NewClient(nil, ts.URL)
		d, err := c.Parse(context.Background(), strings.NewReader("content"), test.mimeType, test.format)
		if err != nil {
			t.Errorf("Parse(%v) got error: %v", test.format, err)
			continue
		}
		if got.method != http.MethodPut || got.path != test.wantPath {
			t.Errorf("Parse(%v) sent %s %s, want PUT %s", test.format, got.method, got.path, test.wantPath)
		}
		if string(got.body) != "content" {
			t.Errorf("Parse(%v) sent body %q, want %q", test.format, got.body, "content")
		}
		if ct := got.header.Get("Content-Type"); ct != test.mimeType {
			t.Errorf("Parse(%v) sent Content-Type %q, want %q", test.format, ct, test.mimeType)
		}
		doc, ok := d.(*Document)
		if !ok {
			t.Errorf("Parse(%v) returned %T, want *Document", test.format, d)
			continue
		}
		if doc.Meta.Size == nil || *doc.Meta.Size != 11149 {
			t.Errorf("Parse(%v) Size = %v, want 11149", test.format, doc.Meta.Size)
		}
		if doc.Created == nil || doc.Created.Microsecond() != 719000 || !doc.Created.Naive {
			t.Errorf("Parse(%v) Created = %v, want 2023-07-19T11:30:44.719000", test.format, doc.Created)
		}
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
	return p
}

// formServer accepts multipart uploads and records the uploaded part.
func formServer(t *testing.T, response string, got *request, part *request) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = request{method: r.Method, path: r.URL.Path, header: r.Header.Clone()}
		f, fh, err := r.FormFile(uploadField)
		if err != nil {
			t.Errorf("FormFile(%q) got error: %v", uploadField, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		*part = request{path: fh.Filename, header: http.Header(fh.Header), body: body}
		fmt.Fprint(w, response)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestParseFile(t *testing.T) {
	path := writeTemp(t, "sample.odt", "file content")
	tests := []struct {
		format   Format
		wantPath string
	}{
		{FormatHTML, "/tika/form"},
		{FormatText, "/tika/form/text"},
	}
	for _, test := range tests {
		var got, part request
		ts := formServer(t, odtResponse, &got, &part)
		c := NewClient(nil, ts.URL)
		d, err := c.ParseFile(context.Background(), path, "application/vnd.oasis.opendocument.text", test.format)
		if err != nil {
			t.Errorf("ParseFile(%v) got error: %v", test.format, err)
			continue
		}
		if got.method != http.MethodPost || got.path != test.wantPath {
			t.Errorf("ParseFile(%v) sent %s %s, want POST %s", test.format, got.method, got.path, test.wantPath)
		}
		if cd := got.header.Get("Content-Disposition"); cd != `attachment; filename="sample.odt"` {
			t.Errorf("ParseFile(%v) Content-Disposition = %q", test.format, cd)
		}
		if part.path != "sample.odt" || string(part.body) != "file content" {
			t.Errorf("ParseFile(%v) uploaded %q with %q", test.format, part.path, part.body)
		}
		if ct := part.header.Get("Content-Type"); ct != "application/vnd.oasis.opendocument.text" {
			t.Errorf("ParseFile(%v) part Content-Type = %q", test.format, ct)
		}
		if d.Shape() != ShapeDocument {
			t.Errorf("ParseFile(%v) shape = %v, want document", test.format, d.Shape())
		}
	}
}

func TestParseFileDetectsMIME(t *testing.T) {
	path := writeTemp(t, "notes.txt", "plain words\n")
	var got, part request
	ts := formServer(t, `{"Content-Type": "text/plain; charset=UTF-8", "X-TIKA:Parsed-By": ["p"]}`, &got, &part)
	if _, err := NewClient(nil, ts.URL).MetaFile(context.Background(), path, ""); err != nil {
		t.Fatalf("MetaFile got error: %v", err)
	}
	if got.path != "/meta/form" {
		t.Errorf("MetaFile path = %q, want /meta/form", got.path)
	}
	if ct := part.header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("detected part Content-Type = %q, want text/plain", ct)
	}
}

func TestParseFileMissing(t *testing.T) {
	c := NewClient(nil, errorServer.URL)
	if _, err := c.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.odt"), "", FormatText); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile of missing file got error %v, want os.ErrNotExist", err)
	}
}

func TestRecursive(t *testing.T) {
	const response = `[
		{"Content-Type": "application/vnd.oasis.opendocument.text", "X-TIKA:Parsed-By": ["a"], "X-TIKA:content": "container"},
		{"Content-Type": "image/png", "X-TIKA:Parsed-By": ["b"], "tiff:ImageWidth": "10"},
		{"Content-Type": "image/jpeg", "X-TIKA:Parsed-By": ["c"]}
	]`
	tests := []struct {
		format   Format
		file     bool
		wantPath string
	}{
		{FormatHTML, false, "/rmeta"},
		{FormatText, false, "/rmeta/text"},
		{FormatHTML, true, "/rmeta/form/html"},
		{FormatText, true, "/rmeta/form/text"},
	}
	path := writeTemp(t, "images.odt", "zip bytes")
	for _, test := range tests {
		var got, part request
		var ts *httptest.Server
		var docs []Decoded
		var err error
		if test.file {
			ts = formServer(t, response, &got, &part)
			docs, err = NewClient(nil, ts.URL).RecursiveFile(context.Background(), path, "", test.format)
		} else {
			ts = recorder(t, response, &got)
			docs, err = NewClient(nil, ts.URL).Recursive(context.Background(), strings.NewReader("zip bytes"), "", test.format)
		}
		if err != nil {
			t.Errorf("%s got error: %v", test.wantPath, err)
			continue
		}
		if got.path != test.wantPath {
			t.Errorf("path = %q, want %q", got.path, test.wantPath)
		}
		want := []Shape{ShapeDocument, ShapeImage, ShapeImage}
		if len(docs) != len(want) {
			t.Errorf("%s returned %d documents, want %d", test.wantPath, len(docs), len(want))
			continue
		}
		for i, d := range docs {
			if d.Shape() != want[i] {
				t.Errorf("%s [%d] shape = %v, want %v", test.wantPath, i, d.Shape(), want[i])
			}
		}
		if img := docs[1].(*Image); img.Meta.Width == nil || *img.Meta.Width != 10 {
			t.Errorf("%s [1] width = %v, want 10", test.wantPath, img.Meta.Width)
		}
	}
}

func TestParseRecursive(t *testing.T) {
	tests := []struct {
		response   string
		want       []string
		statusCode int
	}{
		{
			response: `[{"Content-Type":"text/plain","X-TIKA:Parsed-By":[],"X-TIKA:content":"test 1"}]`,
			want:     []string{"test 1"},
		},
		{
			response: `[{"Content-Type":"text/plain","X-TIKA:Parsed-By":[],"X-TIKA:content":"test 1"},{"Content-Type":"text/plain","X-TIKA:Parsed-By":[],"X-TIKA:content":"test 2"}]`,
			want:     []string{"test 1", "test 2"},
		},
		{
			response: `[{"Content-Type":"text/plain","X-TIKA:Parsed-By":[],"other_key":"other_value"},{"Content-Type":"text/plain","X-TIKA:Parsed-By":[],"X-TIKA:content":"test"}]`,
			want:     []string{"test"},
		},
		{
			response: `[]`,
		},
		{
			statusCode: http.StatusUnprocessableEntity,
		},
	}
	for _, test := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/rmeta/text" {
				t.Errorf("ParseRecursive path = %q, want /rmeta/text", r.URL.Path)
			}
			if test.statusCode != 0 {
				w.WriteHeader(test.statusCode)
			} else {
				fmt.Fprint(w, test.response)
			}
		}))
		defer ts.Close()
		c := NewClient(nil, ts.URL)
		got, err := c.ParseRecursive(context.Background(), nil)
		if err != nil {
			if test.statusCode != 0 {
				var tikaErr ClientError
				if errors.As(err, &tikaErr) {
					if tikaErr.StatusCode != test.statusCode {
						t.Errorf("ParseRecursive expected status code %d, got %d", test.statusCode, tikaErr.StatusCode)
					}
				} else {
					t.Errorf("ParseRecursive expected ClientError, got %T", err)
				}
			} else {
				t.Errorf("ParseRecursive returned an error: %v, want %v", err, test.want)
			}
			continue
		}
		if test.statusCode != 0 {
			t.Errorf("ParseRecursive got no error, want status %d", test.statusCode)
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("ParseRecursive(%q) got %v, want %v", test.response, got, test.want)
		}
	}
}

func TestParseRecursiveError(t *testing.T) {
	if _, err := errorClient.ParseRecursive(context.Background(), nil); err == nil {
		t.Error("ParseRecursive got no error, want an error")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		recursive bool
		protocol  bool
	}{
		{"invalid json", `{`, false, false},
		{"missing content type", `{"X-TIKA:Parsed-By": []}`, false, true},
		{"array for single", `[]`, false, false},
		{"recursive element missing parsers", `[{"Content-Type": "text/plain"}]`, true, true},
	}
	for _, test := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, test.response)
		}))
		c := NewClient(nil, ts.URL)
		var err error
		if test.recursive {
			_, err = c.Recursive(context.Background(), nil, "", FormatText)
		} else {
			_, err = c.Meta(context.Background(), nil, "")
		}
		ts.Close()
		if err == nil {
			t.Errorf("%s got no error", test.name)
			continue
		}
		if got := errors.Is(err, ErrProtocol); got != test.protocol {
			t.Errorf("%s: errors.Is(%v, ErrProtocol) = %v, want %v", test.name, err, got, test.protocol)
		}
	}
}

func TestCompression(t *testing.T) {
	large := strings.Repeat("compressible ", 200)
	tests := []struct {
		name     string
		compress bool
		content  string
		wantGzip bool
	}{
		{"off", false, large, false},
		{"small", true, "short", false},
		{"large", true, large, true},
	}
	for _, test := range tests {
		var got request
		ts := recorder(t, odtResponse, &got)
		c := NewClient(nil, ts.URL, WithCompression(test.compress))
		if _, err := c.Parse(context.Background(), strings.NewReader(test.content), "", FormatText); err != nil {
			t.Errorf("Parse(%s) got error: %v", test.name, err)
			continue
		}
		isGzip := got.header.Get("Content-Encoding") == "gzip"
		if isGzip != test.wantGzip {
			t.Errorf("Parse(%s) Content-Encoding gzip = %v, want %v", test.name, isGzip, test.wantGzip)
		}
		if ae := got.header.Get("Accept-Encoding"); test.compress && ae != "gzip" {
			t.Errorf("Parse(%s) Accept-Encoding = %q, want gzip", test.name, ae)
		}
		body := got.body
		if isGzip {
			zr, err := gzip.NewReader(bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Parse(%s) sent invalid gzip: %v", test.name, err)
			}
			if body, err = io.ReadAll(zr); err != nil {
				t.Fatalf("Parse(%s) sent invalid gzip: %v", test.name, err)
			}
		}
		if string(body) != test.content {
			t.Errorf("Parse(%s) server received %d bytes, want %d", test.name, len(body), len(test.content))
		}
	}
}

func TestGzipResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		zw := gzip.NewWriter(w)
		fmt.Fprint(zw, odtResponse)
		zw.Close()
	}))
	defer ts.Close()
	d, err := NewClient(nil, ts.URL, WithCompression(true)).Meta(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("Meta got error: %v", err)
	}
	if d.Shape() != ShapeDocument {
		t.Errorf("Meta shape = %v, want document", d.Shape())
	}
}

func TestVersion(t *testing.T) {
	want := "Apache Tika 2.9.0"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/version" {
			t.Errorf("Version sent %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, want)
	}))
	defer ts.Close()
	got, err := NewClient(nil, ts.URL).Version(context.Background())
	if err != nil {
		t.Fatalf("Version returned an error: %v", err)
	}
	if got != want {
		t.Errorf("Version got %q, want %q", got, want)
	}
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"sample.odt", `attachment; filename="sample.odt"`},
		{`my "quoted" file.pdf`, `attachment; filename="my \"quoted\" file.pdf"`},
		{"why?.txt", `attachment; filename="why?.txt"`},
		{"résumé.pdf", `attachment; filename="r_sum_.pdf"; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`},
		{"日本 語?.doc", `attachment; filename="__ __.doc"; filename*=UTF-8''%E6%97%A5%E6%9C%AC%20%E8%AA%9E%3F.doc`},
		{`"é".txt`, `attachment; filename="\"_\".txt"; filename*=UTF-8''%22%C3%A9%22.txt`},
	}
	for _, test := range tests {
		if got := contentDisposition(test.filename, "attachment"); got != test.want {
			t.Errorf("contentDisposition(%q) = %s, want %s", test.filename, got, test.want)
		}
	}
}
