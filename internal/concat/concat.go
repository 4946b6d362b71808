// Package concat writes an ordered list of files into a single text document,
// one section per entry. Failures reading an entry are isolated to that entry
// and embedded as a marker line; only failing to open or write the output
// aborts the run.
package concat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"ctxcat/internal/source"
	"ctxcat/internal/textenc"
)

// StdoutPath selects the configured stdout instead of a file in WriteFile.
const StdoutPath = "-"

type Concatenator struct {
	src     source.Source
	enc     textenc.Encoding
	observe func(Entry)
	stdout  io.Writer
}

type Option func(*Concatenator)

// WithObserver registers fn to receive every entry after its section has
// been written.
func WithObserver(fn func(Entry)) Option {
	return func(c *Concatenator) {
		c.observe = fn
	}
}

// WithStdout sets the writer used for StdoutPath, instead of os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(c *Concatenator) {
		c.stdout = w
	}
}

func New(src source.Source, enc textenc.Encoding, opts ...Option) *Concatenator {
	c := &Concatenator{
		src:    src,
		enc:    enc,
		stdout: os.Stdout,
	}
	for _, apply := range opts {
		if apply != nil {
			apply(c)
		}
	}
	return c
}

// ReadEntry performs the read-or-report step for one path. It never fails:
// errors are folded into the returned Entry.
func (c *Concatenator) ReadEntry(ctx context.Context, path string) Entry {
	e := Entry{Path: path, Encoding: c.enc.Name()}

	data, err := c.src.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.Kind = KindNotFound
			return e
		}
		e.Exists = true
		e.Kind = KindReadError
		e.Err = err
		return e
	}
	e.Exists = true

	text, err := c.enc.Decode(data)
	if err != nil {
		e.Kind = KindDecodeError
		e.Err = err
		return e
	}
	e.Kind = KindOK
	e.Content = text
	return e
}

// WriteTo writes one section per path, in order, to w. Sections are written as
// soon as each entry has been read. A write error on w, or ctx being done
// between entries, stops the run; sections already written stay in place.
func (c *Concatenator) WriteTo(ctx context.Context, w io.Writer, paths []string) (Summary, error) {
	var sum Summary
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		e := c.ReadEntry(ctx, p)
		// An entry cut short by cancellation is not a property of the file.
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		n, err := io.WriteString(w, e.Section())
		sum.Bytes += int64(n)
		if err != nil {
			return sum, fmt.Errorf("write section %s: %w", p, err)
		}
		sum.add(e)

		if c.observe != nil {
			c.observe(e)
		}
	}
	return sum, nil
}

// WriteFile truncates (or creates) the file at out and writes the document to
// it. If out cannot be opened, an *OutputOpenError is returned and nothing is
// read or written.
func (c *Concatenator) WriteFile(ctx context.Context, out string, paths []string) (sum Summary, err error) {
	if out == StdoutPath {
		return c.WriteTo(ctx, c.stdout, paths)
	}

	if dir := filepath.Dir(out); dir != "." && dir != "" {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return Summary{}, &OutputOpenError{Path: out, Err: mkErr}
		}
	}

	f, openErr := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if openErr != nil {
		return Summary{}, &OutputOpenError{Path: out, Err: openErr}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", out, closeErr)
		}
	}()

	return c.WriteTo(ctx, f, paths)
}
