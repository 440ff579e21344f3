// Package store provides the SQLite-backed local key-value store that holds
// the serialized game snapshot on this device.
//
// The store is deliberately small: Get, Set and Remove over a single kv
// table. The persistence coordinator uses one well-known key.
//
// # Encoding
//
// Values are written LZ4-compressed and tagged with their encoding, so rows
// written by older versions (stored raw) still read back.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
