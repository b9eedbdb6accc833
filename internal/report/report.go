// Package report renders scan results as a JSON document.
package report

import (
	"encoding/json"
	"time"

	"github.com/spf13/afero"
)

// Actions recorded per file in a report.
const (
	ActionKept    = "kept"
	ActionDeleted = "deleted"
	ActionFailed  = "failed"
	ActionDryRun  = "dry-run"
)

// File is one member of a duplicate group.
type File struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Action string `json:"action"`
}

// Group is one duplicate group.
type Group struct {
	Fingerprint string `json:"fingerprint"`
	Files       []File `json:"files"`
}

// Skipped is a candidate that could not be fingerprinted.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report describes one scan run.
type Report struct {
	ScannedAt        time.Time `json:"scanned_at"`
	RootPath         string    `json:"root_path"`
	Strategy         string    `json:"strategy"`
	Recursive        bool      `json:"recursive"`
	TotalCandidates  int       `json:"total_candidates"`
	DuplicateGroups  []Group   `json:"duplicate_groups"`
	SkippedFiles     []Skipped `json:"skipped_files,omitempty"`
	TotalDupFiles    int       `json:"total_duplicate_files"`
	PotentialReclaim int64     `json:"potential_reclaimed_bytes"`
	ActualDeleted    int64     `json:"actual_deleted_bytes"`
}

// Save writes the report to path as indented JSON.
func Save(fs afero.Fs, path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0644)
}
