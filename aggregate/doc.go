// Package aggregate turns matched rows into the uniform record shape returned
// to callers, and summarizes per-target outcomes.
//
// Everything here is pure: no I/O, no shared state. Records keep the order of
// their input rows and are never deduplicated, so two rows found in the same
// target produce two records with the same Key.
package aggregate
