// Package cli implements the kcycle command-line interface.
//
// The cli package provides the Cobra-based commands that crawl race cards
// (entries), crawl race results (results) and join the two datasets into a
// rank-annotated entry dataset (annotate). Settings come from flags, KCYCLE_*
// environment variables and an optional YAML config file. A run summary is
// printed to stdout as a table or JSON; logs go to stderr.
package cli
