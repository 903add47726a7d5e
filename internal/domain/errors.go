package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCollectionNotFound is returned when a collection name is unknown.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDuplicateCollection is returned when registering a name that exists
	// under any letter case.
	ErrDuplicateCollection = errors.New("collection already exists")
	// ErrVersionConflict is returned by a store when the document changed
	// since it was read.
	ErrVersionConflict = errors.New("collection store version conflict")
	// ErrIterationLimit marks a turn that ran out of tool rounds.
	ErrIterationLimit = errors.New("tool iteration limit reached")
)

// ParseError reports malformed accumulated tool-call arguments.
type ParseError struct {
	ToolName string
	Raw      string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse arguments for tool %q: %v", e.ToolName, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DeploymentError reports a failed contract deployment.
type DeploymentError struct {
	Name string
	Err  error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deploy collection %q: %v", e.Name, e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }

// MintError reports a failed mint.
type MintError struct {
	Collection string
	Err        error
}

func (e *MintError) Error() string {
	return fmt.Sprintf("mint %q: %v", e.Collection, e.Err)
}

func (e *MintError) Unwrap() error { return e.Err }
