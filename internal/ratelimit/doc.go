// Package ratelimit implements fixed-window request limiting over a
// shared counter store.
//
// Counters live in a store offering one atomic operation: read the
// record for a key, reset it if its window has passed, and increment it
// only while it is below the limit. Two implementations exist: an
// in-process map for single-node deployments and tests, and a redis
// script for a fleet of instances sharing one store.
//
// The limiter is deliberately approximate: windows are wall-clock
// based, bursts are possible at window edges, and concurrent checks on
// the same key may over-admit by a small bounded amount. Store failures
// fail open: an infrastructure hiccup admits traffic instead of
// rejecting it.
package ratelimit
