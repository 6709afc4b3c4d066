package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrExists is returned by Create when the ledger file already exists.
var ErrExists = errors.New("ledger already exists")

// LedgerFileName is the default ledger file inside the data directory.
const LedgerFileName = "report.card"

// BaseDir returns the root data directory (~/.flex).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".flex"), nil
}

// DefaultPath returns ~/.flex/report.card.
func DefaultPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, LedgerFileName), nil
}

// File is a ledger stored as a plain text file, one record per line.
// It assumes a single writer.
type File struct {
	Path string
}

// ReadAllLines returns every line of the ledger without line terminators.
func (f File) ReadAllLines() ([]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", f.Path, err)
	}
	text := strings.TrimSuffix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

// AppendLine appends one line and flushes it to disk.
func (f File) AppendLine(line string) error {
	data, err := os.ReadFile(f.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error reading %s: %w", f.Path, err)
	}

	fh, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("storage error opening %s: %w", f.Path, err)
	}
	defer fh.Close()

	// Never glue a record onto a last line that lacks its newline.
	if len(data) > 0 && data[len(data)-1] != '\n' {
		line = "\n" + line
	}
	if _, err := fh.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("storage error appending to %s: %w", f.Path, err)
	}
	if err := fh.Sync(); err != nil {
		return fmt.Errorf("storage error syncing %s: %w", f.Path, err)
	}
	return nil
}

// TruncateLastLine removes the final line of the ledger.
func (f File) TruncateLastLine() error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("storage error reading %s: %w", f.Path, err)
	}
	return f.write(dropLastLine(data))
}

// ReplaceLastLine swaps the final line for line in a single atomic write,
// so a crash leaves either the old or the new record.
func (f File) ReplaceLastLine(line string) error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("storage error reading %s: %w", f.Path, err)
	}
	out := dropLastLine(data)
	out = append(out, line...)
	out = append(out, '\n')
	return f.write(out)
}

// Create writes a new ledger and fails if the file already exists.
func (f File) Create(lines []string) error {
	if _, err := os.Stat(f.Path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, f.Path)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	return f.write([]byte(strings.Join(lines, "\n") + "\n"))
}

// write replaces the file through a temp file and a rename.
func (f File) write(data []byte) error {
	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// dropLastLine returns data without its final line, keeping the newline
// that terminates the line before it.
func dropLastLine(data []byte) []byte {
	trimmed := bytes.TrimRight(data, "\n")
	i := bytes.LastIndexByte(trimmed, '\n')
	if i < 0 {
		return []byte{}
	}
	return append([]byte{}, trimmed[:i+1]...)
}
