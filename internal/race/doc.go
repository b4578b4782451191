// Package race provides the record types of the race-card and race-result
// datasets and the pure transforms between them.
//
// Entry records are produced by left-joining the three per-race tables of a
// race card on rider name. Result rows are exploded into one row per placed
// rider and joined back into the entry dataset to annotate finishing rank.
// All functions return new slices and never modify their inputs.
package race
