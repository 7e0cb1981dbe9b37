// Package storage provides audit record persistence backends.
//
// Two backends are available:
//
//   - Memory: an in-memory slice, intended for tests and short-lived runs
//   - SQLite: durable single-file storage using the pure-Go modernc.org
//     driver, so builds stay cgo-free
package storage
