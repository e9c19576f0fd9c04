// Package rate provides the Redis-backed fixed-window limiter guarding
// sign-in attempts.
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefixes:
//   - agl:  — sign-in per-identifier
//   - agli: — sign-in per-IP
//
// The limiter knows nothing about accounts or policies; the Engine
// decides when to check, increment, and reset.
package rate
