package textenc

import (
	"errors"
	"testing"
)

func TestLookup_CanonicalNames(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "utf-8"},
		{in: "utf-8", want: "utf-8"},
		{in: " UTF8 ", want: "utf-8"},
		{in: "cp1251", want: "windows-1251"},
		{in: "windows-1251", want: "windows-1251"},
		{in: "koi8-r", want: "koi8-r"},
		{in: "utf-16le", want: "utf-16le"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			enc, err := Lookup(tt.in)
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tt.in, err)
			}
			if enc.Name() != tt.want {
				t.Fatalf("Lookup(%q).Name() = %q, want %q", tt.in, enc.Name(), tt.want)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("klingon-8")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Fatalf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestDecode_UTF8(t *testing.T) {
	got, err := UTF8().Decode([]byte("привет\n"))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got != "привет\n" {
		t.Fatalf("got %q", got)
	}

	var zero Encoding
	if _, err := zero.Decode([]byte("ok")); err != nil {
		t.Fatalf("zero Encoding should decode UTF-8, got %v", err)
	}
}

func TestDecode_InvalidUTF8ReportsOffset(t *testing.T) {
	_, err := UTF8().Decode([]byte{'a', 'b', 0xff, 'c'})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if de.Offset != 2 {
		t.Fatalf("want offset 2, got %d", de.Offset)
	}
	if de.Encoding != "utf-8" {
		t.Fatalf("want encoding utf-8, got %q", de.Encoding)
	}
}

func TestDecode_LiteralReplacementCharIsValidUTF8(t *testing.T) {
	if _, err := UTF8().Decode([]byte("a\uFFFDb")); err != nil {
		t.Fatalf("valid U+FFFD should decode, got %v", err)
	}
}

func TestDecode_Windows1251(t *testing.T) {
	enc, err := Lookup("windows-1251")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	// "Привет" in windows-1251.
	got, err := enc.Decode([]byte{0xcf, 0xf0, 0xe8, 0xe2, 0xe5, 0xf2})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got != "Привет" {
		t.Fatalf("got %q", got)
	}
}

func TestDecode_RejectsReplacementFromDecoder(t *testing.T) {
	enc, err := Lookup("utf-16le")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	_, err = enc.Decode([]byte{'h', 0, 0xfd, 0xff})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if de.Offset != -1 {
		t.Fatalf("want unknown offset, got %d", de.Offset)
	}
}
