package models

import "errors"

// ErrRunInProgress is returned when a sync or reconcile invocation overlaps
// an already-running one for the same job.
var ErrRunInProgress = errors.New("run already in progress")
