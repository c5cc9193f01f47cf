package stream

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aristath/vigil/internal/utils"
)

// FileStore keeps one msgpack snapshot per symbol under Dir.
type FileStore struct {
	Dir string
}

func (s FileStore) path(symbol string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(utils.NormalizeSymbol(symbol))
	return filepath.Join(s.Dir, name+".msgpack")
}

// Load returns the stored snapshot for symbol; ok is false when none exists.
func (s FileStore) Load(symbol string) (data []byte, ok bool, err error) {
	data, err = os.ReadFile(s.path(symbol))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read tracker state: %w", err)
	}
	return data, true, nil
}

// Save writes the snapshot atomically.
func (s FileStore) Save(symbol string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	final := s.path(symbol)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tracker state: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to replace tracker state: %w", err)
	}
	return nil
}
