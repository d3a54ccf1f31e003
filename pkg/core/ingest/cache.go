package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConversionCache converts uploaded files to CSV at most once per analysis
// run. The orchestrator owns its lifetime: created at run start, Cleanup
// deferred so converted artifacts are deleted on every exit path.
type ConversionCache struct {
	runID     string
	dir       string
	mu        sync.Mutex
	converted map[string]string
	artifacts []string
}

func NewConversionCache() *ConversionCache {
	return &ConversionCache{
		runID:     uuid.New().String()[:8],
		dir:       os.TempDir(),
		converted: make(map[string]string),
	}
}

// RunID identifies this cache's analysis run in logs and artifact names.
func (c *ConversionCache) RunID() string { return c.runID }

// Convert returns a CSV path for the given upload. CSV files pass through
// untouched; HTML files get their first table extracted. The converted
// artifact is reused on every later call with the same path.
func (c *ConversionCache) Convert(path string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.converted[path]; ok {
		return cached, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		c.converted[path] = path
		return path, nil
	case ".html", ".htm":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("CONVERT_READ_ERROR: %v", err)
		}
		csvData, err := HTMLTableToCSV(string(raw))
		if err != nil {
			return "", fmt.Errorf("CONVERT_TABLE_ERROR: %v", err)
		}
		out := filepath.Join(c.dir, fmt.Sprintf("converted_%s_%d.csv", c.runID, time.Now().UnixNano()))
		if err := os.WriteFile(out, []byte(csvData), 0o644); err != nil {
			return "", fmt.Errorf("CONVERT_WRITE_ERROR: %v", err)
		}
		c.converted[path] = out
		c.artifacts = append(c.artifacts, out)
		fmt.Printf("[INGEST] converted %s -> %s\n", filepath.Base(path), filepath.Base(out))
		return out, nil
	default:
		return "", fmt.Errorf("CONVERT_UNSUPPORTED_FORMAT: %s", ext)
	}
}

// Cleanup deletes every converted artifact. Safe to call more than once.
func (c *ConversionCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, path := range c.artifacts {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fmt.Printf("[INGEST] cleanup of %s failed: %v\n", path, err)
		}
	}
	c.artifacts = nil
	c.converted = make(map[string]string)
}
