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
	"fmt"
	"regexp"
)

// identifierPattern accepts plain identifiers: a letter or underscore followed
// by letters, digits, underscores or $. Table and column names are spliced
// into SQL text, so anything else is rejected.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]{0,127}$`)

// ValidateIdentifier checks that name is safe to quote into a SQL statement.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// ValidateTarget validates a SearchTarget according to domain rules.
//
// Validation rules:
//   - SourceID must not be empty
//   - Schema, Table and Column must be plain SQL identifiers
func ValidateTarget(target SearchTarget) error {
	if target.SourceID == "" {
		return fmt.Errorf("%w: source id is empty", ErrInvalidTarget)
	}
	for _, name := range []string{target.Schema, target.Table, target.Column} {
		if err := ValidateIdentifier(name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
	}
	return nil
}

// ValidateAction validates that an Action has a known value.
func ValidateAction(action Action) error {
	if action != ActionMask && action != ActionDelete {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return nil
}

// ValidateDecision validates a Decision according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Action must be mask or delete
//   - Probability must be within [0, 1]
//
// NOT validated:
//   - SourceRecordID (callers may not know one)
func ValidateDecision(decision *Decision) error {
	if decision == nil {
		return fmt.Errorf("%w: decision is nil", ErrInvalidDecision)
	}

	if decision.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDecision, ErrEmptyName)
	}

	if err := ValidateAction(decision.Action); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDecision, err)
	}

	if !IsValidProbability(decision.Probability) {
		return fmt.Errorf("%w: %w", ErrInvalidDecision, ErrInvalidProbability)
	}

	return nil
}

// IsValidProbability checks that p lies within [0, 1].
func IsValidProbability(p float64) bool {
	return p >= 0 && p <= 1
}
