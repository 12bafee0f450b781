package eventio

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// Writer encodes events as JSON Lines.
type Writer struct {
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write appends one event line.
func (w *Writer) Write(ev *particle.Event) error {
	return w.enc.Encode(fromEvent(ev))
}

// WriteFile writes events to path, replacing any existing file.
func WriteFile(path string, events []particle.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	w := NewWriter(bw)
	for i := range events {
		if err := w.Write(&events[i]); err != nil {
			f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
