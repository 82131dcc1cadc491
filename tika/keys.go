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

// A Key is a metadata field name as it appears in a Tika Server JSON
// response. See https://cwiki.apache.org/confluence/display/TIKA/Metadata+Overview.
type Key string

// String returns the JSON key of k.
func (k Key) String() string {
	return string(k)
}

// Keys set by Tika itself on every parsed document.
const (
	KeyParsers       Key = "X-TIKA:Parsed-By"
	KeyContentType   Key = "Content-Type"
	KeyContentLength Key = "Content-Length"
	// KeyContent holds the extracted body of the document. The format
	// (HTML or plain text) depends on the endpoint.
	KeyContent Key = "X-TIKA:content"
)

// Dublin Core keys.
const (
	KeyDCCreator     Key = "dc:creator"
	KeyDCCreated     Key = "dcterms:created"
	KeyDCModified    Key = "dcterms:modified"
	KeyDCRights      Key = "dc:rights"
	KeyDCContributor Key = "dc:contributor"
	KeyDCTitle       Key = "dc:title"
	KeyDCRelation    Key = "dc:relation"
	KeyDCType        Key = "dc:type"
	KeyDCIdentifier  Key = "dc:identifier"
	KeyDCPublisher   Key = "dc:publisher"
	KeyDCDescription Key = "dc:description"
	KeyDCSubject     Key = "dc:subject"
	KeyDCLanguage    Key = "dc:language"
	KeyDCFormat      Key = "dc:format"
)

// XMP keys.
const (
	KeyXMPAbout    Key = "xmp:About"
	KeyXMPCreated  Key = "xmp:CreateDate"
	KeyXMPNumPages Key = "xmpTPg:NPages"
)

// Keys emitted by individual parsers which show up often enough to be
// promoted to typed fields.
const (
	KeyCharacterCount Key = "meta:character-count"
	KeyWordCount      Key = "meta:word-count"
	KeyPageCount      Key = "meta:page-count"
	KeyLastAuthor     Key = "meta:last-author"
	KeyRevision       Key = "cp:revision"
	KeyLanguage       Key = "language"

	KeyImageWidth    Key = "tiff:ImageWidth"
	KeyImageLength   Key = "tiff:ImageLength"
	KeyBitsPerSample Key = "tiff:BitsPerSample"
)
