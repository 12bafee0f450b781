package eventio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// maxLineBytes bounds a single event line; events with a few thousand
// tracks stay well under it.
const maxLineBytes = 16 << 20

// Reader decodes events from a JSON Lines stream. Blank lines are skipped
// but still counted, so DecodeError line numbers match the file.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps r. The reader buffers internally; r needs no buffering of
// its own.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Reader{sc: sc}
}

// Next decodes the next event. It returns io.EOF once the stream is
// exhausted and a DecodeError for an unparseable line.
func (r *Reader) Next() (*particle.Event, error) {
	for r.sc.Scan() {
		r.line++
		raw := bytes.TrimSpace(r.sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec eventRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, &DecodeError{Line: r.line, Err: err}
		}
		ev, err := rec.toEvent()
		if err != nil {
			return nil, &DecodeError{Line: r.line, Err: err}
		}
		return ev, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Line returns the number of input lines consumed so far.
func (r *Reader) Line() int {
	return r.line
}

// ReadAll drains r into a slice.
func ReadAll(r io.Reader) ([]particle.Event, error) {
	rd := NewReader(r)
	var out []particle.Event
	for {
		ev, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
}

// ReadFile loads every event from a JSON Lines file.
func ReadFile(path string) ([]particle.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f)
}
