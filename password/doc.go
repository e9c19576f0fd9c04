// Package password implements password hashing with Argon2id and the
// pure strength policy applied at sign-up.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters
// so callers can re-hash on the next successful sign-in.
//
// [Evaluate] is the strength policy: a fixed denylist of breached
// passwords plus a 3-of-4 character-class requirement. It is pure and
// side-effect free; the minimum-length rule belongs to the caller.
//
// This package never stores, retrieves, or logs passwords, and imports
// no other authgate package.
package password
