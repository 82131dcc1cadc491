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

/*
Package tika provides a client for the JSON endpoints of Apache Tika's
(http://tika.apache.org) Server, and typed decoding of the metadata it
returns.

Start with basic imports:

	import "github.com/go-tika/tika-client/tika"

You will need a running Server to make API calls to. If you have the
Server JAR but no running server, you can start one.

	s, err := tika.NewServer("tika-server.jar", "")
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	defer s.Stop()

To parse a file, create a client and call ParseFile, or Parse for any
io.Reader.

	client := tika.NewClient(nil, s.URL())
	doc, err := client.ParseFile(context.Background(), "path/to/file.odt", "", tika.FormatText)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(*doc.Base().Content)

Every call returns a Decoded, whose concrete type depends on the
Content-Type the server reported:

	switch d := doc.(type) {
	case *tika.Document:
		// d.Meta.PageCount, d.Meta.Created, ...
	case *tika.Image:
		// d.Meta.Width, d.Meta.Height, ...
	case *tika.Response:
		// any other type
	}

Optional fields are nil when the server did not send them or sent a value
that could not be converted. Dates are parsed by ParseTime; dates written
without a zone are marked Naive. All fields remain available, untyped,
in Response.Data.

If you pass an *http.Client to tika.NewClient, it will be used for all requests.
*/
package tika
