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
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Shape identifies the concrete type behind a Decoded.
type Shape int

// Shapes of decoded responses.
const (
	ShapeGeneric Shape = iota
	ShapeDocument
	ShapeImage
)

func (s Shape) String() string {
	switch s {
	case ShapeDocument:
		return "document"
	case ShapeImage:
		return "image"
	}
	return "generic"
}

// Decoded is a decoded Tika response. The concrete type is *Response,
// *Document or *Image, as reported by Shape; use a type switch to reach
// the shape specific fields.
type Decoded interface {
	// Base returns the fields common to every shape.
	Base() *Response
	Shape() Shape
	decoded()
}

// Base returns r.
func (r *Response) Base() *Response { return r }

// Shape returns ShapeGeneric.
func (r *Response) Shape() Shape { return ShapeGeneric }

func (*Response) decoded() {}

// Document is the response for office documents and similar paged text
// formats.
type Document struct {
	*Response
	Meta DocumentMeta
}

// DocumentMeta groups the document properties that different parsers
// report under different keys.
type DocumentMeta struct {
	Size      *int64
	Language  *string
	Revision  *int64
	Created   *Timestamp
	Modified  *Timestamp
	PageCount *int64
	WordCount *int64
}

// Shape returns ShapeDocument.
func (d *Document) Shape() Shape { return ShapeDocument }

// Image is the response for raster image formats.
type Image struct {
	*Response
	Meta ImageMeta
}

// ImageMeta holds the image dimensions as reported by the TIFF/EXIF
// metadata Tika emits for every raster format.
type ImageMeta struct {
	Width         *int64
	Height        *int64
	BitsPerSample *int64
	Created       *Timestamp
}

// Shape returns ShapeImage.
func (i *Image) Shape() Shape { return ShapeImage }

type shapeFunc func(*Decoder, *Response) Decoded

// shapes maps a media type, without parameters, to its response shape.
var shapes = map[string]shapeFunc{
	"application/vnd.oasis.opendocument.text":                                   (*Decoder).document,
	"application/vnd.oasis.opendocument.spreadsheet":                            (*Decoder).document,
	"application/vnd.oasis.opendocument.presentation":                           (*Decoder).document,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   (*Decoder).document,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         (*Decoder).document,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": (*Decoder).document,
	"application/msword":            (*Decoder).document,
	"application/vnd.ms-excel":      (*Decoder).document,
	"application/vnd.ms-powerpoint": (*Decoder).document,
	"application/rtf":               (*Decoder).document,
	"application/pdf":               (*Decoder).document,

	"image/png":  (*Decoder).image,
	"image/jpeg": (*Decoder).image,
	"image/webp": (*Decoder).image,
	"image/gif":  (*Decoder).image,
	"image/tiff": (*Decoder).image,
}

// A Decoder turns raw Metadata into Decoded responses. A Decoder holds no
// mutable state and is safe for concurrent use.
type Decoder struct {
	log logrus.FieldLogger
}

// NewDecoder returns a Decoder which reports unknown content types and
// dropped fields to log. If log is nil, nothing is logged.
func NewDecoder(log logrus.FieldLogger) *Decoder {
	if log == nil {
		log = discardLogger()
	}
	return &Decoder{log: log}
}

var defaultDecoder = NewDecoder(nil)

// Decode decodes m with a Decoder that does not log.
func Decode(m Metadata) (Decoded, error) {
	return defaultDecoder.Decode(m)
}

// Decode returns the most specific shape for m's content type. The only
// error is a *ProtocolError; unknown content types decode to a *Response.
func (d *Decoder) Decode(m Metadata) (Decoded, error) {
	r, err := d.newResponse(m)
	if err != nil {
		return nil, err
	}
	mt := mediaType(r.Type)
	if f, ok := shapes[mt]; ok {
		return f(d, r), nil
	}
	d.log.WithField("content_type", r.Type).Warn("tika: no specialized response for content type")
	return r, nil
}

// DecodeAll decodes each element of ms, as returned by the recursive
// metadata endpoints, keeping the server's order.
func (d *Decoder) DecodeAll(ms []Metadata) ([]Decoded, error) {
	out := make([]Decoded, 0, len(ms))
	for i, m := range ms {
		r, err := d.Decode(m)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (d *Decoder) document(r *Response) Decoded {
	m := r.Data
	meta := DocumentMeta{
		Size:      r.ContentLength,
		Language:  r.Language,
		Revision:  r.Revision,
		Created:   r.Created,
		Modified:  r.Modified,
		PageCount: r.PageCount,
		WordCount: r.WordCount,
	}
	if meta.Language == nil {
		meta.Language = d.optString(m, KeyDCLanguage)
	}
	if meta.Created == nil {
		meta.Created = r.XMPCreated
	}
	if meta.PageCount == nil {
		meta.PageCount = d.optInt(m, KeyPageCount)
	}
	return &Document{Response: r, Meta: meta}
}

func (d *Decoder) image(r *Response) Decoded {
	m := r.Data
	meta := ImageMeta{
		Width:         d.optInt(m, KeyImageWidth),
		Height:        d.optInt(m, KeyImageLength),
		BitsPerSample: d.optInt(m, KeyBitsPerSample),
		Created:       r.Created,
	}
	if meta.Created == nil {
		meta.Created = r.XMPCreated
	}
	return &Image{Response: r, Meta: meta}
}

// mediaType returns the lower-cased type/subtype of a Content-Type value,
// dropping parameters such as charset.
func mediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
