package notify

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// InstallIcon makes sure path holds data, rewriting it when the content differs.
// Native notification services want a file path, not bytes.
func InstallIcon(path string, data []byte) error {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("check notification icon: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create icon directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write notification icon: %w", err)
	}
	return nil
}
