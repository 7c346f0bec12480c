package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/relay/internal/models"
)

// Cleaner removes files written by relay generate
type Cleaner struct {
	scanner  *DirectoryScanner
	fileName string
}

// NewCleaner creates a cleaner for the given generated file name,
// relay_gen.go when empty
func NewCleaner(fileName string) *Cleaner {
	if fileName == "" {
		fileName = models.DefaultOutputFile
	}
	return &Cleaner{scanner: NewDirectoryScanner(), fileName: fileName}
}

// CleanGeneratedFiles removes the generated file of every package directory
// matched by args. Files whose first line is not the relay header are left
// alone. It returns the removed paths.
func (c *Cleaner) CleanGeneratedFiles(args []string) ([]string, error) {
	dirs, err := c.scanner.ScanDirectories(args)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, dir := range dirs {
		path := filepath.Join(dir, c.fileName)
		generated, err := IsGeneratedFile(path)
		if err != nil {
			return removed, err
		}
		if !generated {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// IsGeneratedFile reports whether path exists and starts with the relay header
func IsGeneratedFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == models.GeneratedHeader, nil
}
