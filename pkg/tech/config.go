package tech

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cellgen/pkg/errors"
)

// Parse decodes a TOML technology description into a Process.
// Unknown keys are rejected so that misspelled rules do not silently fall
// back to zero.
func Parse(data []byte) (Process, error) {
	var p Process
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return Process{}, errors.Wrap(errors.ErrCodeInvalidTechnology, err, "parse technology")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Process{}, errors.New(errors.ErrCodeInvalidTechnology, "unknown technology key %q", undec[0].String())
	}
	return p, nil
}

// Decode reads and validates a TOML technology from r.
func Decode(r io.Reader) (*Technology, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTechnology, err, "read technology")
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return New(p)
}

// Load reads and validates the TOML technology file at path.
func Load(path string) (*Technology, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "technology file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidTechnology, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes p as TOML. The output can be read back with [Parse].
func Encode(w io.Writer, p Process) error {
	return toml.NewEncoder(w).Encode(p)
}
