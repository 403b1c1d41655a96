// Package apperr defines the sentinel errors shared by the content
// subsystems and their API surfaces.
package apperr

import "errors"

// ErrNotFound signals a lookup miss (post id, tag, page). Callers decide
// the user-facing behavior (404, fallback).
var ErrNotFound = errors.New("not found")
