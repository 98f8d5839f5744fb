// Package sink persists exported artifacts, either to a local directory or
// to a remote endpoint via HTTP PUT.
package sink
