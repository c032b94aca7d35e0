package delivery

import (
	"errors"
	"fmt"
	"os"

	"github.com/air-guardian/pm25-fusion-poc/internal/properties"
	"github.com/gocarina/gocsv"
)

// ErrMissingInput marks a stage invoked before its upstream artifact
// exists. The wrapping message names the file and the command that
// produces it.
var ErrMissingInput = errors.New("missing input artifact")

func requireArtifact(path, producedBy string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s not found, run '%s' first", ErrMissingInput, path, producedBy)
	}
	return nil
}

// writeCSV marshals rows to a temp file and renames it into place, so a
// failing stage never leaves a partial artifact behind.
func writeCSV[T any](rows []T, path string) error {
	if err := properties.EnsureParentDir(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

func readCSV[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var rows []T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}
