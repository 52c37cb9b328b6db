package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedArtifact = errors.New("unsupported artifact type; expected .txt or .zip")
	ErrEmptyArchive        = errors.New("archive contains no .txt member")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrTooManyFiles        = errors.New("batch exceeds maximum file count")
	ErrNoFiles             = errors.New("no files supplied")
	ErrUnknownLayout       = errors.New("unknown record layout version")
)
