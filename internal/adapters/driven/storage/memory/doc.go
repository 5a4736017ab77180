// Package memory provides in-memory implementations of the driven storage
// ports. They back unit tests and the --ephemeral serve mode and mirror the
// tenant and integrity checks of the SQLite adapter.
package memory
