// Package query caches backend reads for the console and keeps them fresh.
//
// Reads go through Fetch, keyed by a Key and scoped by the signed-in subject.
// Writes go through Client.Mutate, which names the key prefixes a write makes
// stale. A successful mutation drops those entries and publishes an Event that
// the web layer forwards to the browser, so every table showing the affected
// resource re-fetches. Nothing else reloads pages.
package query
