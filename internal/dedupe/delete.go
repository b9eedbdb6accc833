package dedupe

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DeleteError reports a single duplicate that could not be removed.
type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("deleting %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// Outcome is the result of one deletion attempt.
type Outcome struct {
	Path string
	Size int64 // bytes reclaimed; 0 when stat failed
	Err  error // nil on success, *DeleteError otherwise
}

// Pruner removes duplicate files, keeping the first member of each group.
type Pruner struct {
	fs  afero.Fs
	log *zap.Logger
}

// NewPruner returns a Pruner over the given filesystem. A nil logger
// disables diagnostics.
func NewPruner(fs afero.Fs, log *zap.Logger) *Pruner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pruner{fs: fs, log: log}
}

// Prune deletes every group member after the first, in group order.
// Attempts are independent: a failed removal is recorded in its outcome
// and the remaining files are still processed. Deletions are irreversible;
// callers confirm before calling.
func (p *Pruner) Prune(groups []Group) []Outcome {
	var outcomes []Outcome
	for _, group := range groups {
		if len(group.Paths) < 2 {
			continue
		}
		for _, path := range group.Paths[1:] {
			outcomes = append(outcomes, p.remove(path))
		}
	}
	return outcomes
}

func (p *Pruner) remove(path string) Outcome {
	var size int64
	if info, err := p.fs.Stat(path); err == nil {
		size = info.Size()
	}
	if err := p.fs.Remove(path); err != nil {
		p.log.Warn("delete failed", zap.String("path", path), zap.Error(err))
		return Outcome{Path: path, Err: &DeleteError{Path: path, Err: err}}
	}
	p.log.Debug("deleted duplicate", zap.String("path", path), zap.Int64("size", size))
	return Outcome{Path: path, Size: size}
}
