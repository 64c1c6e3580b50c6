package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// ReadDataset decodes a JSON dataset. "-" reads standard input.
func ReadDataset(path string) (models.Dataset, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return models.Dataset{}, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		r = f
	}

	var ds models.Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return models.Dataset{}, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return ds, nil
}

// WriteDataset encodes ds as indented JSON. "-" writes standard output.
func WriteDataset(path string, ds models.Dataset) (err error) {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create dataset file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("close dataset file: %w", cerr)
			}
		}()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return nil
}
