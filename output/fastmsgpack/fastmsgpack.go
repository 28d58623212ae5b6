// Package fastmsgpack offers a subset of msgpack serialization operated on fixed length []byte with no heap allocation,
// no IO abstraction and all calls are inlined.
//
// Callers calculate the exact length first by SizeOf* functions, allocate once and then encode by Encode* functions.
//
// The calls should only be used for hot paths, e.g. serialization of individual entries, and NOT to be used in tests
// to verify anything.
package fastmsgpack
