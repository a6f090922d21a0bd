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


// Package search implements the fan-out/fan-in name search.
//
// A Runner queries one target: it opens a fresh connection through a
// source.Connector, runs a case- and accent-insensitive substring match on the
// target column and returns every matching row. An Executor runs one Runner
// task per registered target on a bounded ants worker pool and blocks until
// every task has finished. Per-target failures are isolated: they are logged,
// reported to the Monitor and recorded as failed outcomes, and never abort the
// rest of the batch.
//
// Basic usage:
//
//	runner, _ := search.NewRunner(provider)
//	executor, _ := search.NewExecutor(reg, runner, search.WithPoolSize(16))
//	defer executor.Release()
//
//	result := executor.Dispatch(ctx, "Erickson")
//	for _, row := range result.Rows {
//		fmt.Println(row.Target.Source(), row.Value)
//	}
package search
