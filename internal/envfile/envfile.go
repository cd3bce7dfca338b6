// Package envfile manages the pipeline's .env credentials file. The file is
// strictly append-only: blocks are added at the end and existing lines are
// never rewritten, deduplicated, or validated.
package envfile

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// File is a handle on an append-only key/value env file.
type File struct {
	Path string
}

// AppendBlock appends a comment header and a KEY=value assignment. The file
// is created if absent.
func (f *File) AppendBlock(header, key, value string) error {
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening env file: %w", err)
	}
	defer file.Close()
	if _, err := fmt.Fprintf(file, "\n# %s\n%s=%s\n", header, key, value); err != nil {
		return fmt.Errorf("appending to env file: %w", err)
	}
	return nil
}

// Read parses the file into a key/value map. Later assignments of a repeated
// key win, matching how the pipeline itself loads the file.
func (f *File) Read() (map[string]string, error) {
	values, err := godotenv.Read(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return values, nil
}

// Exists reports whether the file is present on disk.
func (f *File) Exists() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}

// MissingKeys returns the given keys that have no non-empty value in the
// file. A missing file counts every key as missing.
func (f *File) MissingKeys(keys []string) []string {
	values, err := f.Read()
	if err != nil {
		return keys
	}
	var missing []string
	for _, k := range keys {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}
