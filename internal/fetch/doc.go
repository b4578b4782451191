// Package fetch retrieves pages from the race schedule site and parses them
// into page trees.
//
// The Client sets the configured User-Agent on every request, retries transient
// failures, decodes the response body to UTF-8 based on its declared charset
// and reports failures as NetworkError or HTTPStatusError. Throttle wraps any
// Fetcher so that consecutive requests are spaced by a politeness delay.
package fetch
