// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import "errors"

// Terminal failure conditions surfaced by the exporters.
var (
	// ErrExportFailed indicates an I/O or serialization failure while
	// writing or loading an export.
	ErrExportFailed = errors.New("export failed")

	// ErrStorageUnavailable indicates the relational backend could not be
	// reached or opened.
	ErrStorageUnavailable = errors.New("storage backend unavailable")
)

// IsExportFailed reports whether err is an export failure.
func IsExportFailed(err error) bool {
	return errors.Is(err, ErrExportFailed)
}

// IsStorageUnavailable reports whether err is a storage availability failure.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
