package logging

import (
	"fmt"
	"os"
	"sync"
)

// rotatingFile is an io.Writer that rotates the underlying log file once it
// crosses maxBytes, keeping at most maxBackups rotated copies named
// <path>.1, <path>.2, ... (highest number = oldest), per spec.md §6's
// "rotating file, 10 MB x 100".
type rotatingFile struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	maxBackups  int
	file        *os.File
	currentSize int64
}

const (
	defaultMaxLogBytes   = 10 * 1024 * 1024
	defaultMaxLogBackups = 100
)

func newRotatingFile(path string, maxBytes int64, maxBackups int) (*rotatingFile, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxLogBytes
	}
	if maxBackups <= 0 {
		maxBackups = defaultMaxLogBackups
	}
	rf := &rotatingFile{path: path, maxBytes: maxBytes, maxBackups: maxBackups}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	if err := ensureLogDir(rf.path); err != nil {
		return err
	}
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", rf.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file %s: %w", rf.path, err)
	}
	rf.file = f
	rf.currentSize = info.Size()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.currentSize+int64(len(p)) > rf.maxBytes {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := rf.file.Write(p)
	rf.currentSize += int64(n)
	return n, err
}

// rotate closes the current file, shifts <path>.N to <path>.N+1 (dropping
// anything past maxBackups), and opens a fresh <path>.
func (rf *rotatingFile) rotate() error {
	if err := rf.file.Close(); err != nil {
		return fmt.Errorf("close log file %s before rotation: %w", rf.path, err)
	}

	oldest := fmt.Sprintf("%s.%d", rf.path, rf.maxBackups)
	if _, err := os.Stat(oldest); err == nil {
		_ = os.Remove(oldest)
	}
	for n := rf.maxBackups - 1; n >= 1; n-- {
		src := fmt.Sprintf("%s.%d", rf.path, n)
		dst := fmt.Sprintf("%s.%d", rf.path, n+1)
		if _, err := os.Stat(src); err == nil {
			_ = os.Rename(src, dst)
		}
	}
	if _, err := os.Stat(rf.path); err == nil {
		_ = os.Rename(rf.path, rf.path+".1")
	}
	return rf.open()
}

func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.file.Close()
}
