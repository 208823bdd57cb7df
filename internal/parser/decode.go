package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// decodeArgument decodes one trimmed argument segment as a strict JSON
// value. Documents decode to bson.D so key order survives through the
// engine and out to display; arrays decode to bson.A. Numbers become int64
// when integral and float64 otherwise. Extended JSON is not interpreted:
// a "$set" or "$oid" key is an ordinary key here.
func decodeArgument(segment string) (interface{}, error) {
	trimmed := strings.TrimSpace(segment)

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()

	value, err := readValue(dec)
	if err != nil {
		if err == io.EOF {
			err = errors.New("unexpected end of input")
		}
		return nil, &ArgumentDecodeError{Segment: trimmed, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ArgumentDecodeError{Segment: trimmed, Err: errors.New("trailing data after JSON value")}
	}

	return value, nil
}

// readValue consumes one complete JSON value from the decoder.
func readValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readDocument(dec)
		case '[':
			return readArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t.String())
	case string:
		return t, nil
	case bool:
		return t, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case nil:
		return nil, nil
	}

	return nil, fmt.Errorf("unexpected token %v", tok)
}

// readDocument consumes key/value pairs up to the closing brace. A repeated
// key keeps its first position and takes its last value, so decoded
// documents always have unique keys.
func readDocument(dec *json.Decoder) (bson.D, error) {
	doc := bson.D{}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}

		value, err := readValue(dec)
		if err != nil {
			return nil, err
		}

		replaced := false
		for i := range doc {
			if doc[i].Key == key {
				doc[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			doc = append(doc, bson.E{Key: key, Value: value})
		}
	}

	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return doc, nil
}

// readArray consumes elements up to the closing bracket.
func readArray(dec *json.Decoder) (bson.A, error) {
	arr := bson.A{}

	for dec.More() {
		value, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}

	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return arr, nil
}
