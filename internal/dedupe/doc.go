// Package dedupe provides message deduplication using a time-based cache
// so redelivered messages are routed at most once within the window.
package dedupe
