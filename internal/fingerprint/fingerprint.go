// Package fingerprint computes content fingerprints for image files.
//
// Two strategies implement the Fingerprinter interface: RawBytes hashes
// the file content exactly as stored, NormalizedPixels hashes a canonical
// rendering of the decoded image. Both produce a 128-bit MD5 fingerprint
// in lowercase hex, so files fingerprinted by the same strategy are
// duplicates exactly when their fingerprints match.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Strategy names accepted by New.
const (
	StrategyBytes  = "bytes"
	StrategyPixels = "pixels"
)

// Fingerprinter derives a duplicate-detection key from a file.
type Fingerprinter interface {
	// Name identifies the strategy.
	Name() string
	// Fingerprint returns the hex-encoded fingerprint of the file at path.
	Fingerprint(path string) (string, error)
}

// DecodeError reports a file that could not be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// New returns the Fingerprinter for the named strategy.
func New(strategy string, fs afero.Fs) (Fingerprinter, error) {
	switch strategy {
	case StrategyBytes:
		return NewRawBytes(fs), nil
	case StrategyPixels:
		return NewNormalizedPixels(fs), nil
	default:
		return nil, fmt.Errorf("unknown fingerprint strategy %q", strategy)
	}
}

// RawBytes fingerprints the file content as stored on disk. Only
// byte-identical files share a fingerprint; recompressed or resized copies
// of the same picture do not.
type RawBytes struct {
	fs afero.Fs
}

// NewRawBytes returns the raw-bytes strategy.
func NewRawBytes(fs afero.Fs) *RawBytes {
	return &RawBytes{fs: fs}
}

// Name implements Fingerprinter.
func (*RawBytes) Name() string { return StrategyBytes }

// Fingerprint streams the whole file through MD5.
func (r *RawBytes) Fingerprint(path string) (string, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
