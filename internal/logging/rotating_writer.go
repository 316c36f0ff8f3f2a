package logging

import (
	"errors"
	"io/fs"
	"os"
	"sync"
)

// rotatingWriter appends to path until maxBytes, then moves the file to path.1 (replacing
// any older backup) and starts over, so at most two generations are kept on disk.
type rotatingWriter struct {
	path     string
	maxBytes int64

	mu   sync.Mutex
	file *os.File
	size int64
}

func newRotatingWriter(path string, maxMB int) (*rotatingWriter, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	f, size, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	return &rotatingWriter{
		path:     path,
		maxBytes: int64(maxMB) * 1024 * 1024,
		file:     f,
		size:     size,
	}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		f, size, err := openLogFile(w.path)
		if err != nil {
			return 0, err
		}
		w.file, w.size = f, size
	}
	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *rotatingWriter) rotate() error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	if err := os.Rename(w.path, w.path+".1"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.file, w.size = f, 0
	return nil
}

func openLogFile(path string) (*os.File, int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}
