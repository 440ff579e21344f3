// Package remote implements the cloud save store: one row per user holding
// the serialized game snapshot.
//
// The same SQL runs against PostgreSQL (lib/pq) in production and SQLite in
// tests and single-machine setups. Each row carries a server-assigned id
// (UUIDv7) created on first insert and kept on every later update, which is
// how callers tell an insert from an update.
package remote
