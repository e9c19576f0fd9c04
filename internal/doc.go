// Package internal holds shared primitives for the authgate engine:
// session key generation and row identifiers. Nothing here is part of
// the public API.
package internal
