// Package placeholder expands {name} template tokens in configuration
// strings against a mapping of resolved values.
//
// Resolution is transitive: a placeholder's value may itself contain
// further placeholders, and expansion repeats until a fixed point is
// reached. Circular references are detected and reported instead of
// looping. Resolution is idempotent — resolving an already-resolved
// string is a no-op.
//
// All functions are pure; the package has no side effects and no
// dependencies outside the standard library.
package placeholder
