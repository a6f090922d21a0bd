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


package search

import "errors"

var (
	// ErrConnectorRequired is returned when a connector is not provided.
	ErrConnectorRequired = errors.New("connector required")

	// ErrTargetsRequired is returned when a target list is not provided.
	ErrTargetsRequired = errors.New("targets required")

	// ErrSearcherRequired is returned when a target searcher is not provided.
	ErrSearcherRequired = errors.New("target searcher required")

	// ErrColumnNotSelected is returned when the searched column is missing from the result set.
	ErrColumnNotSelected = errors.New("search column not in result set")

	// ErrTaskPanicked is returned when a target task panicked.
	ErrTaskPanicked = errors.New("target task panicked")

	// ErrSubmitFailed is returned when a target task could not be scheduled.
	ErrSubmitFailed = errors.New("could not schedule target task")
)
