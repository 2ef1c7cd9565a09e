package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/archon-search/archon/internal/core/domain"
)

// ChangeDetector computes file fingerprints and classifies files
// against the state recorded in the document index.
//
// The content hash is the authoritative change signal. Modification
// time and size are advisory only: a file touched without a content
// change stays UNCHANGED, and a content change with a preserved mtime
// is still detected as MODIFIED. Relying on mtime alone produces false
// positives after copy/restore operations, and false negatives would
// silently serve stale index entries.
type ChangeDetector struct{}

// NewChangeDetector creates a new change detector.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// Fingerprint reads the file and returns its scan-time record.
// An unreadable file returns a FileUnreadable error; callers record it
// as a per-file failure and continue.
func (d *ChangeDetector) Fingerprint(path string) (*domain.FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrFileUnreadable, path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrFileUnreadable, path, err)
	}

	sum := sha256.Sum256(data)
	return &domain.FileFingerprint{
		Path:        path,
		ContentHash: hex.EncodeToString(sum[:]),
		MTime:       info.ModTime(),
		ByteSize:    info.Size(),
	}, nil
}

// Classify compares a fresh fingerprint against the metadata recorded
// for the same path, if any.
func (d *ChangeDetector) Classify(fp *domain.FileFingerprint, existing *domain.ChunkMeta) domain.FileClass {
	if existing == nil {
		return domain.ClassNew
	}
	if fp.ContentHash != existing.ContentHash {
		return domain.ClassModified
	}
	return domain.ClassUnchanged
}
