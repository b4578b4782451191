// Package dataset reads and writes the crawler's CSV datasets.
//
// Files are UTF-8 with a byte order mark so spreadsheet tools pick up the
// Korean column headers; reading accepts files with or without the mark.
// Column layouts come from the race package schemas. The default location is
// ./data, with race_info.csv, race_results.csv and race_annotated.csv.
package dataset
