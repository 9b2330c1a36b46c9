package records

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenykepesz/expense-dashboard/internal/fsutil"
	"github.com/fenykepesz/expense-dashboard/internal/model"
)

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// Save writes txns to path, as CSV for a .csv extension and JSON otherwise.
// The file is replaced atomically.
func Save(path string, txns []model.Transaction) error {
	var buf bytes.Buffer
	var err error
	if isCSV(path) {
		err = WriteCSV(&buf, txns)
	} else {
		err = Write(&buf, txns)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Load reads records written by Save.
func Load(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records: %w", err)
	}
	defer f.Close()

	if isCSV(path) {
		return ReadCSV(f)
	}
	return Read(f)
}
