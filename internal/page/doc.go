// Package page wraps parsed HTML documents behind a small tree interface.
//
// Extraction code only needs four capabilities from a document: selecting all
// descendants that match a CSS selector, selecting the first one, reading the
// text of a node and reading an attribute. The Node interface exposes exactly
// those, backed by goquery, so scrapers can be tested against any tree.
package page
