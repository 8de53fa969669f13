package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// LineSource reads one query per line. Blank lines and lines starting with
// '#' are skipped but still counted, so Request.Line matches the input file.
type LineSource struct {
	scanner *bufio.Scanner
	line    int
}

// NewLineSource creates a LineSource over r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{scanner: bufio.NewScanner(r)}
}

func (s *LineSource) ExtractBatch(ctx context.Context, batchSize int) ([]Request, error) {
	batch := make([]Request, 0, batchSize)
	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return batch, fmt.Errorf("read line %d: %w", s.line+1, err)
			}
			return batch, io.EOF
		}
		s.line++

		q := strings.TrimSpace(s.scanner.Text())
		if q == "" || strings.HasPrefix(q, "#") {
			continue
		}
		batch = append(batch, Request{Line: s.line, Query: q})
	}
	return batch, nil
}

// JSONLinesSink writes each result as one JSON document per line.
type JSONLinesSink struct {
	enc *json.Encoder
}

// NewJSONLinesSink creates a sink writing to w.
func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLinesSink{enc: enc}
}

func (s *JSONLinesSink) LoadBatch(_ context.Context, results []Result) error {
	for _, r := range results {
		if err := s.enc.Encode(r); err != nil {
			return fmt.Errorf("write line %d: %w", r.Line, err)
		}
	}
	return nil
}
