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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-units"

	"github.com/go-tika/tika-client/tika"
)

func printOne(w io.Writer, d tika.Decoded, raw bool) error {
	if raw {
		return printJSON(w, d.Base().Data)
	}
	printSummary(w, d)
	return nil
}

func printAll(w io.Writer, docs []tika.Decoded, raw bool) error {
	if raw {
		ms := make([]tika.Metadata, len(docs))
		for i, d := range docs {
			ms[i] = d.Base().Data
		}
		return printJSON(w, ms)
	}
	for i, d := range docs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Document %d of %d\n", i+1, len(docs))
		printSummary(w, d)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printSummary(w io.Writer, d tika.Decoded) {
	r := d.Base()
	field(w, "Type", r.Type)
	field(w, "Shape", d.Shape().String())
	field(w, "Parsers", strings.Join(r.Parsers, ", "))
	optString(w, "Title", r.Title)
	optString(w, "Creator", r.Creator)
	optString(w, "Language", r.Language)
	optTime(w, "Created", r.Created)
	optTime(w, "Modified", r.Modified)

	switch v := d.(type) {
	case *tika.Document:
		if v.Meta.Size != nil {
			field(w, "Size", units.HumanSize(float64(*v.Meta.Size)))
		}
		optInt(w, "Pages", v.Meta.PageCount)
		optInt(w, "Words", v.Meta.WordCount)
		optInt(w, "Revision", v.Meta.Revision)
	case *tika.Image:
		optInt(w, "Width", v.Meta.Width)
		optInt(w, "Height", v.Meta.Height)
		optInt(w, "Bits", v.Meta.BitsPerSample)
	}

	if r.Content != nil {
		if c := strings.TrimSpace(*r.Content); c != "" {
			fmt.Fprintf(w, "\n%s\n", c)
		}
	}
}

func field(w io.Writer, name, value string) {
	fmt.Fprintf(w, "%-10s %s\n", name+":", value)
}

func optString(w io.Writer, name string, v *string) {
	if v != nil {
		field(w, name, *v)
	}
}

func optInt(w io.Writer, name string, v *int64) {
	if v != nil {
		field(w, name, fmt.Sprint(*v))
	}
}

func optTime(w io.Writer, name string, v *tika.Timestamp) {
	if v != nil {
		field(w, name, v.Format())
	}
}
