package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PIDFile records the process id of a running server
type PIDFile struct {
	path string
}

// NewPIDFile returns a PIDFile at path; an empty path disables it
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file location
func (p *PIDFile) Path() string {
	return p.path
}

// Write stores the current process id, creating the parent directory
func (p *PIDFile) Write() error {
	if p.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// Read returns the recorded process id
func (p *PIDFile) Read() (int, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s: %w", p.path, err)
	}
	return pid, nil
}

// Remove deletes the file; a missing file is not an error
func (p *PIDFile) Remove() error {
	if p.path == "" {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
