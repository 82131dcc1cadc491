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
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrProtocol is matched by every *ProtocolError.
var ErrProtocol = errors.New("tika: server response violates protocol")

// A ProtocolError reports that a field every Tika response carries was
// missing or unusable. It means the server is not behaving as a Tika
// Server, so it is not recoverable by the caller.
type ProtocolError struct {
	Key    Key
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("tika: required field %q %s", e.Key, e.Reason)
}

// Unwrap returns ErrProtocol.
func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}

// Response is the typed view of one document's metadata. Type and Parsers
// are always set. The other fields are nil when the key is absent or its
// value could not be converted. Data holds every field, including those
// without a typed accessor.
type Response struct {
	Type    string
	Parsers []string

	Content       *string
	ContentLength *int64

	Created     *Timestamp
	Modified    *Timestamp
	Title       *string
	Creator     *string
	Description *string

	XMPCreated *Timestamp
	PageCount  *int64

	CharacterCount *int64
	WordCount      *int64
	Revision       *int64
	Language       *string
	LastAuthor     *string

	Data Metadata
}

// NewResponse decodes the fields shared by every shape without choosing a
// shape. See Decode.
func NewResponse(m Metadata) (*Response, error) {
	return defaultDecoder.newResponse(m)
}

// newResponse decodes the fields shared by every shape.
func (d *Decoder) newResponse(m Metadata) (*Response, error) {
	ct, ok := m.Get(KeyContentType)
	if !ok {
		return nil, &ProtocolError{Key: KeyContentType, Reason: "is missing"}
	}
	if k := ct.Kind(); k != KindString && k != KindStrings {
		return nil, &ProtocolError{Key: KeyContentType, Reason: "is not a string"}
	}
	typ, ok := ct.Str()
	if !ok {
		return nil, &ProtocolError{Key: KeyContentType, Reason: "is empty"}
	}

	pv, ok := m.Get(KeyParsers)
	if !ok {
		return nil, &ProtocolError{Key: KeyParsers, Reason: "is missing"}
	}
	parsers, ok := pv.StrList()
	if !ok {
		return nil, &ProtocolError{Key: KeyParsers, Reason: "is not a list of strings"}
	}

	return &Response{
		Type:    typ,
		Parsers: parsers,

		Content:       d.optString(m, KeyContent),
		ContentLength: d.optInt(m, KeyContentLength),

		Created:     d.optTime(m, KeyDCCreated),
		Modified:    d.optTime(m, KeyDCModified),
		Title:       d.optString(m, KeyDCTitle),
		Creator:     d.optString(m, KeyDCCreator),
		Description: d.optString(m, KeyDCDescription),

		XMPCreated: d.optTime(m, KeyXMPCreated),
		PageCount:  d.optInt(m, KeyXMPNumPages),

		CharacterCount: d.optInt(m, KeyCharacterCount),
		WordCount:      d.optInt(m, KeyWordCount),
		Revision:       d.optInt(m, KeyRevision),
		Language:       d.optString(m, KeyLanguage),
		LastAuthor:     d.optString(m, KeyLastAuthor),

		Data: m,
	}, nil
}

func (d *Decoder) optString(m Metadata, k Key) *string {
	v, ok := m.Get(k)
	if !ok {
		return nil
	}
	s, ok := v.Str()
	if !ok {
		d.dropped(k, fmt.Errorf("%w: %v is not a string", ErrValueKind, v.Kind()))
		return nil
	}
	return &s
}

func (d *Decoder) optInt(m Metadata, k Key) *int64 {
	v, ok := m.Get(k)
	if !ok {
		return nil
	}
	n, err := v.Int()
	if err != nil {
		d.dropped(k, err)
		return nil
	}
	return &n
}

func (d *Decoder) optTime(m Metadata, k Key) *Timestamp {
	v, ok := m.Get(k)
	if !ok {
		return nil
	}
	t, err := v.Time()
	if err != nil {
		d.dropped(k, err)
		return nil
	}
	return &t
}

func (d *Decoder) dropped(k Key, err error) {
	d.log.WithFields(logrus.Fields{
		"field": k.String(),
		"error": err.Error(),
	}).Debug("tika: ignoring malformed metadata field")
}
