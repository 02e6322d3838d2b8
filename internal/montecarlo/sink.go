package montecarlo

import (
	"bufio"
	"os"
	"strconv"
)

// FileSink writes each combination's samples to its own CSV file, one value
// per line. PathFor maps a 1-based combination ordinal to the file path.
type FileSink struct {
	PathFor func(ordinal int) string
}

// Create opens the combination's output file, truncating any stale copy
// from a previous run.
func (s *FileSink) Create(ordinal int) (SampleWriter, error) {
	f, err := os.Create(s.PathFor(ordinal))
	if err != nil {
		return nil, err
	}
	return &fileSampleWriter{f: f, w: bufio.NewWriter(f)}, nil
}

type fileSampleWriter struct {
	f *os.File
	w *bufio.Writer
}

func (w *fileSampleWriter) Append(v float64) error {
	if _, err := w.w.WriteString(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *fileSampleWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// Discard removes the partially written file so cancellation leaves no
// truncated sample sets behind.
func (w *fileSampleWriter) Discard() error {
	name := w.f.Name()
	w.f.Close()
	return os.Remove(name)
}
