package service

import "errors"

// Expected absence and conflict conditions, distinguished from
// transient store failures so handlers can map them to 404/409 instead
// of 500.
var (
	ErrNoteNotFound       = errors.New("note not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrJobNotFound        = errors.New("archive job not found")
	ErrArchiveNotFound    = errors.New("archive not found")
	ErrArchiveInProgress  = errors.New("an archive build is in progress")
	ErrNoteLimitReached   = errors.New("note limit reached")
)
