// Package textenc resolves named text encodings and decodes input bytes to
// UTF-8 strictly: bytes the encoding cannot represent are an error, never a
// silent replacement character.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const utf8Name = "utf-8"

var ErrUnknownEncoding = errors.New("unknown encoding")

// Encoding is a resolved text encoding. The zero value behaves as UTF-8.
type Encoding struct {
	name string
	enc  encoding.Encoding
}

// UTF8 returns the UTF-8 encoding.
func UTF8() Encoding {
	return Encoding{name: utf8Name}
}

// Lookup resolves an encoding by its WHATWG or IANA name, e.g. "utf-8",
// "windows-1251", "koi8-r" or "utf-16le". Matching is case-insensitive.
func Lookup(name string) (Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return UTF8(), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Encoding{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = name
	}
	if canonical == utf8Name {
		return UTF8(), nil
	}
	return Encoding{name: canonical, enc: enc}, nil
}

// Name returns the canonical encoding name.
func (e Encoding) Name() string {
	if e.name == "" {
		return utf8Name
	}
	return e.name
}

// Decode converts b to a UTF-8 string. It returns a *DecodeError if b is not
// valid under the encoding.
func (e Encoding) Decode(b []byte) (string, error) {
	if e.enc == nil {
		if off := invalidUTF8Offset(b); off >= 0 {
			return "", &DecodeError{Encoding: e.Name(), Offset: off}
		}
		return string(b), nil
	}

	out, err := e.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", &DecodeError{Encoding: e.Name(), Offset: -1, Err: err}
	}
	// x/text decoders substitute U+FFFD for undecodable input.
	if i := bytes.IndexRune(out, utf8.RuneError); i >= 0 {
		return "", &DecodeError{Encoding: e.Name(), Offset: -1}
	}
	return string(out), nil
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// DecodeError reports input that is not valid in the configured encoding.
type DecodeError struct {
	Encoding string
	// Offset is the byte offset of the first invalid sequence, or -1 if unknown.
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("invalid %s byte sequence at offset %d", e.Encoding, e.Offset)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid %s input: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("invalid %s input", e.Encoding)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
