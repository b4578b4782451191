// Package scraper extracts race-card entries and race results from the
// kcycle.or.kr schedule pages.
//
// Day discovery reads the round/day selection control of a year's first page.
// Each day's race card holds several race blocks behind carousel buttons; every
// block carries three tables (roster, training log, recent performance) that
// are joined on rider name into entry records. Result pages hold one table row
// per finished race.
//
// Failures are contained at the smallest unit: a malformed race is skipped, a
// malformed result row is skipped, and a day that cannot be fetched is logged
// and the crawl moves on to the next day.
package scraper
