// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a request failed input validation.
var ErrValidation = errors.New("validation failed")

// ErrClaimConflict indicates a task was not in the open state at claim time.
// The task already has an owner; callers must not retry blindly.
var ErrClaimConflict = errors.New("claim conflict: task is not open")

// ErrInvalidAgent indicates an unknown agent name.
var ErrInvalidAgent = errors.New("invalid agent")

// ErrInvalidTier indicates an unknown tier name.
var ErrInvalidTier = errors.New("invalid tier")

// ErrUpstream indicates a read collaborator (e.g. the sync registry) failed.
var ErrUpstream = errors.New("upstream unavailable")

// ErrMonitorBusy indicates a policy monitor run is already in progress
// in this process.
var ErrMonitorBusy = errors.New("policy monitor run already in progress")
