package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMalformedRequest marks a request line that failed to parse. The
// stream itself is still healthy; callers skip the line and read on.
var ErrMalformedRequest = errors.New("engine: malformed request line")

// Source delivers detection signals from the host environment. The
// engine has no dependency on how capture happens; an accessibility
// layer, a proxy, or a test fixture all look the same from here.
type Source interface {
	// Next blocks until a request arrives. Returns io.EOF when the
	// stream ends, or ctx.Err() on cancellation.
	Next(ctx context.Context) (Request, error)
}

// Consume pumps a source into the engine until the stream ends or ctx
// is cancelled. Malformed requests are skipped with a diagnostic; only
// I/O and cancellation errors end the stream.
func Consume(ctx context.Context, src Source, e *Engine) error {
	for {
		req, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, ErrMalformedRequest) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		if err != nil {
			return err
		}
		if err := e.Submit(ctx, req); err != nil {
			return err
		}
	}
}

// JSONSource reads newline-delimited JSON requests from a reader,
// typically the host adapter's pipe.
type JSONSource struct {
	scanner *bufio.Scanner
}

// NewJSONSource wraps a reader in a line-oriented request source.
func NewJSONSource(r io.Reader) *JSONSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &JSONSource{scanner: sc}
}

// Next reads the next request line. Blank lines are skipped; a line
// that fails to parse returns an error wrapping ErrMalformedRequest.
func (s *JSONSource) Next(ctx context.Context) (Request, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Request{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return Request{}, err
			}
			return Request{}, io.EOF
		}
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		return req, nil
	}
}
