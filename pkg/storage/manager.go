package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Manager writes rendered output files into a single directory
type Manager struct {
	outputDir string
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{outputDir: outputDir}, nil
}

// Save writes the contents of r to name inside the output directory,
// replacing any existing file, and returns the written path
func (m *Manager) Save(name string, r io.Reader) (string, error) {
	filename := filepath.Join(m.outputDir, name)

	out, err := os.CreateTemp(m.outputDir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return filename, nil
}

// SanitizeName turns a manga title into a file name stem by replacing path
// separators, reserved characters and control characters with underscores
func SanitizeName(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, title)

	cleaned = strings.Trim(cleaned, " .")
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}
