package domain

import "time"

// FileFingerprint describes one file as observed at scan time.
// Created fresh on every scan and never persisted directly; it is
// compared against metadata already attached to indexed chunks.
type FileFingerprint struct {
	// Path is the normalised absolute path of the file.
	Path string

	// ContentHash is the hex-encoded SHA-256 of the file's bytes.
	// The hash is the authoritative change signal.
	ContentHash string

	// MTime is the file's modification time. Advisory only.
	MTime time.Time

	// ByteSize is the file's size in bytes. Advisory only.
	ByteSize int64
}

// FileClass is the change-detection classification of a file.
type FileClass string

// File classifications produced by a sync run.
const (
	ClassNew       FileClass = "new"
	ClassModified  FileClass = "modified"
	ClassDeleted   FileClass = "deleted"
	ClassUnchanged FileClass = "unchanged"
)
