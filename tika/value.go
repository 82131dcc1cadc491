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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrValueKind is returned when a metadata value has a JSON type that
// cannot be coerced to the requested Go type.
var ErrValueKind = errors.New("tika: wrong metadata value type")

// Kind is the JSON shape of a Value.
type Kind int

// Kinds of Value. Tika emits single-valued fields as strings and
// multi-valued fields as arrays of strings; numbers are rare but legal.
const (
	KindOther Kind = iota
	KindString
	KindNumber
	KindStrings
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindStrings:
		return "[]string"
	}
	return "other"
}

// A Value is a single metadata value. Decoding a Value from JSON never
// fails on an unexpected type: booleans, objects, nulls and mixed arrays
// become KindOther and are only reachable through MarshalJSON.
type Value struct {
	kind Kind
	text string // KindString value, or the literal of a KindNumber
	list []string
	raw  json.RawMessage
}

// StringValue returns a KindString Value.
func StringValue(s string) Value {
	return Value{kind: KindString, text: s}
}

// StringsValue returns a KindStrings Value.
func StringsValue(s ...string) Value {
	return Value{kind: KindStrings, list: append([]string{}, s...)}
}

// NumberValue returns a KindNumber Value.
func NumberValue(n int64) Value {
	return Value{kind: KindNumber, text: strconv.FormatInt(n, 10)}
}

// Kind returns the JSON shape of v.
func (v Value) Kind() Kind {
	return v.kind
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	*v = Value{raw: append(json.RawMessage(nil), b...)}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch c := b[0]; {
	case c == '"':
		if err := json.Unmarshal(b, &v.text); err != nil {
			return err
		}
		v.kind = KindString
	case c == '[':
		var list []string
		if err := json.Unmarshal(b, &list); err == nil {
			v.kind, v.list = KindStrings, list
		}
	case c == '-' || (c >= '0' && c <= '9'):
		v.kind, v.text = KindNumber, string(b)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Decoded values are written back
// exactly as received.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) > 0 {
		return v.raw, nil
	}
	switch v.kind {
	case KindString:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(v.text), nil
	case KindStrings:
		return json.Marshal(v.list)
	}
	return []byte("null"), nil
}

// Str returns v as a string. Numbers are returned as their literal text
// and arrays as their first element.
func (v Value) Str() (string, bool) {
	switch v.kind {
	case KindString, KindNumber:
		return v.text, true
	case KindStrings:
		if len(v.list) > 0 {
			return v.list[0], true
		}
	}
	return "", false
}

// StrList returns v as a list of strings. A single string is returned as
// a one element list.
func (v Value) StrList() ([]string, bool) {
	switch v.kind {
	case KindStrings:
		return append([]string{}, v.list...), true
	case KindString:
		return []string{v.text}, true
	}
	return nil, false
}

// Int returns v as an integer. Strings are parsed after trimming space;
// numbers with a zero fractional part are accepted.
func (v Value) Int() (int64, error) {
	var s string
	switch v.kind {
	case KindNumber:
		s = v.text
	case KindString, KindStrings:
		s, _ = v.Str()
		s = strings.TrimSpace(s)
	default:
		return 0, fmt.Errorf("%w: %v is not a number", ErrValueKind, v.kind)
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrValueKind)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("parse %q as integer: %w", s, err)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q as integer: %w", s, err)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f != math.Trunc(f) || f >= 0x1p63 || f < -0x1p63 {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrValueKind, s)
	}
	return int64(f), nil
}

// Time returns v parsed with ParseTime.
func (v Value) Time() (Timestamp, error) {
	if v.kind != KindString && v.kind != KindStrings {
		return Timestamp{}, fmt.Errorf("%w: %v is not a date-time string", ErrValueKind, v.kind)
	}
	s, ok := v.Str()
	if !ok {
		return Timestamp{}, fmt.Errorf("%w: empty list", ErrValueKind)
	}
	return ParseTime(s)
}

// Metadata is the raw mapping from metadata key to value for one document,
// as returned by the Tika Server.
type Metadata map[string]Value

// Get returns the value stored under k.
func (m Metadata) Get(k Key) (Value, bool) {
	v, ok := m[string(k)]
	return v, ok
}
