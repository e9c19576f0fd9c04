// Package session implements the Redis-backed session ledger: one row
// per authenticated sign-in, keyed by a 256-bit random session key,
// with a per-user index set for bulk revocation.
//
// Rows are stored as a compact versioned binary blob (see Encode) under
// {prefix}:sess:{key} with a Redis TTL matching the row's ExpiresAt;
// the index lives at {prefix}:user:{userID}. Deleting a row is the
// revocation primitive: tokens bound to a closed row fail ledger-checked
// validation even though their signatures remain valid.
package session
