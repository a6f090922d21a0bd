// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
	"time"
)

// Domain validation errors
var (
	// ErrInvalidTarget indicates a SearchTarget failed validation.
	ErrInvalidTarget = errors.New("invalid search target")

	// ErrInvalidIdentifier indicates a schema, table or column name is not a plain SQL identifier.
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")

	// ErrInvalidDecision indicates a Decision failed validation.
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrInvalidAction indicates an Action other than mask or delete.
	ErrInvalidAction = errors.New("invalid action")

	// ErrEmptyName indicates the name to process is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidProbability indicates a probability outside [0, 1].
	ErrInvalidProbability = errors.New("probability must be between 0 and 1")
)

// ConnectionError reports that a source could not be reached or rejected credentials.
type ConnectionError struct {
	SourceID string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to source %q: %v", e.SourceID, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a failed search against one target.
// Err may itself be a *ConnectionError.
type QueryError struct {
	Target  SearchTarget
	Elapsed time.Duration
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Target.Qualified(), e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// AggregationFault reports a record that violates the output contract.
// It indicates a programming error, not a data problem.
type AggregationFault struct {
	Record AggregatedRecord
	Reason string
}

func (e *AggregationFault) Error() string {
	return fmt.Sprintf("malformed record %q from %q: %s", e.Record.Key, e.Record.Source, e.Reason)
}

// ToolInvocationError reports that a tool could not be invoked at all.
type ToolInvocationError struct {
	Tool string
	Err  error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("invoke tool %q: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }
