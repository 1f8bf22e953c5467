// Package store provides SQLite-backed persistent state for kiln.
//
// The store is a hierarchical key/value cache plus a small run ledger:
//   - Entries: JSON values addressed by a Key (a sequence of segments)
//   - Runs: one row per build, used to find the last run that left usable state
//
// # Keys
//
// Keys are encoded segment by segment, so a segment may itself contain
// slashes (resource paths do). Prefix deletion removes a whole subtree:
//
//	s.DeletePrefix(ctx, store.K("kiln", "output"))
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// A store opened WithMemoryCache keeps every raw value it has read or
// written in memory for the lifetime of the handle.
package store
