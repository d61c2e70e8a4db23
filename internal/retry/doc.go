// Package retry wraps unreliable external calls (process execution, HTTP
// requests) in a fixed exponential backoff loop: seven attempts with delays of
// 1, 2, 4, 8, 16, and 32 seconds between them. Tests inject a Sleeper instead
// of waiting on the wall clock.
package retry
