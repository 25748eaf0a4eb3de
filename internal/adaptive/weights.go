package adaptive

import (
	"encoding"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SaveWeights overwrites path with the serialized model, creating the parent
// directory if needed. The write is not atomic against concurrent writers.
func SaveWeights(path string, m encoding.BinaryMarshaler) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create weights dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write weights: %w", err)
	}
	return nil
}

// LoadWeights reads path into m. A missing file is not an error: it returns
// (false, nil) and leaves m untouched.
func LoadWeights(path string, m encoding.BinaryUnmarshaler) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read weights: %w", err)
	}
	if err := m.UnmarshalBinary(data); err != nil {
		return false, fmt.Errorf("decode weights %s: %w", path, err)
	}
	return true, nil
}
