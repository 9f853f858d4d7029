package domain

import "go.trai.ch/zerr"

var (
	// ErrSourceNotFound is returned when the configured source directory does not exist.
	ErrSourceNotFound = zerr.New("source directory not found")

	// ErrNoBuildCommand is returned when the configuration declares no build command.
	ErrNoBuildCommand = zerr.New("no build command configured")

	// ErrBuildFailed is returned when one or more page builds failed.
	ErrBuildFailed = zerr.New("page build failed")
)
