package ml

import (
	"encoding/gob"
	"os"

	"github.com/cockroachdb/errors"
)

// Save serializes an artifact (model or scaler) to path with gob.
func Save(path string, artifact interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := gob.NewEncoder(f).Encode(artifact); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

// Load deserializes an artifact previously written by Save into dst.
func Load(path string, dst interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := gob.NewDecoder(f).Decode(dst); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}
