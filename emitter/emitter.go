package emitter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/P1n3appl3/rssfetch/post"
)

// Emitter writes posts as line-delimited JSON
type Emitter struct {
	w *bufio.Writer
}

func New(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// Emit writes one line per post and returns how many were written. Posts
// that fail to marshal are skipped; a failing writer stops the stream.
func (e *Emitter) Emit(posts []post.Post) (int, error) {
	written := 0
	for _, p := range posts {
		line, err := Encode(p)
		if err != nil {
			slog.Debug("skipping post that failed to encode", "url", p.URL, "error", err)
			continue
		}
		if _, err := e.w.Write(line); err != nil {
			return written, fmt.Errorf("failed to write post with %w", err)
		}
		if err := e.w.WriteByte('\n'); err != nil {
			return written, fmt.Errorf("failed to write post with %w", err)
		}
		written++
	}
	if err := e.w.Flush(); err != nil {
		return written, fmt.Errorf("failed to flush output with %w", err)
	}
	return written, nil
}

// Encode marshals a post into a single output line without the trailing newline
func Encode(p post.Post) ([]byte, error) {
	return json.Marshal(p)
}

// Decode parses a line produced by Encode
func Decode(line []byte) (post.Post, error) {
	var p post.Post
	if err := json.Unmarshal(line, &p); err != nil {
		return p, fmt.Errorf("failed to decode post with %w", err)
	}
	return p, nil
}
