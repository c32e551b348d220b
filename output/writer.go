package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Writer sends reports to a file, or to stdout when no path is given.
type Writer struct {
	file   *os.File
	out    io.Writer
	path   string
	mu     sync.Mutex
	format Format
}

/*
Creates a writer for outputPath, creating missing parent directories.
An empty path writes to stdout.
*/
func NewWriter(outputPath string, format Format) (*Writer, error) {
	if outputPath == "" {
		return &Writer{out: os.Stdout, format: format}, nil
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %v", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %v", err)
	}

	return &Writer{file: file, out: file, path: outputPath, format: format}, nil
}

func (w *Writer) WriteReport(r *Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out == nil {
		return fmt.Errorf("writer is closed")
	}
	return Render(w.out, r, w.format)
}

func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		w.out = nil
		return nil
	}

	err := w.file.Close()
	w.file = nil
	w.out = nil
	return err
}
