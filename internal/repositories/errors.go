package repositories

import "errors"

// ErrNotFound is returned when a referenced document does not exist.
// Handlers map it to a 404.
var ErrNotFound = errors.New("document not found")
