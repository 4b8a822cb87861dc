// Package codec encodes and decodes request and response bodies in the two formats the
// sandbox understands.
package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"mime"
	"reflect"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Format identifies a body serialization.
type Format int

const (
	None Format = iota
	JSON
	XML
)

const (
	MediaTypeJSON = "application/json"
	MediaTypeXML  = "application/xml"
)

// ElementNamer is implemented by types that want a specific XML root element name. Without
// it, the lowercased Go type name is used.
type ElementNamer interface {
	XMLElementName() string
}

// ParseFormat accepts "json", "xml", or an empty string for None.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "json":
		return JSON, nil
	case "xml":
		return XML, nil
	}
	return None, fmt.Errorf("unknown body format %q (expected json or xml)", s)
}

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case XML:
		return "xml"
	}
	return "none"
}

// MediaType returns the default Content-Type for the format, or "" for None.
func (f Format) MediaType() string {
	switch f {
	case JSON:
		return MediaTypeJSON
	case XML:
		return MediaTypeXML
	}
	return ""
}

// FormatOf maps a Content-Type or Accept value such as "application/xml; charset=utf-8" to
// a Format. Structured suffixes like "+json" are recognized.
func FormatOf(contentType string) (Format, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return None, false
	}
	switch {
	case mediaType == MediaTypeJSON, strings.HasSuffix(mediaType, "+json"):
		return JSON, true
	case mediaType == MediaTypeXML, mediaType == "text/xml", strings.HasSuffix(mediaType, "+xml"):
		return XML, true
	}
	return None, false
}

// Encode serializes v in the given format.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return json.Marshal(v)
	case XML:
		var buf bytes.Buffer
		enc := xml.NewEncoder(&buf)
		start := xml.StartElement{Name: xml.Name{Local: elementName(v)}}
		if err := enc.EncodeElement(v, start); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("cannot encode a body with format %s", f)
}

// Decode parses data in the given format into v, which must be a pointer.
func Decode(data []byte, f Format, v any) error {
	switch f {
	case JSON:
		return json.Unmarshal(data, v)
	case XML:
		return xml.Unmarshal(data, v)
	}
	return fmt.Errorf("cannot decode a body with format %s", f)
}

// ValidJSON reports whether data is a single well-formed JSON value.
func ValidJSON(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

func elementName(v any) string {
	if n, ok := v.(ElementNamer); ok {
		return n.XMLElementName()
	}
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "value"
	}
	return strings.ToLower(t.Name())
}
