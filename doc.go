// Package authgate is an embeddable authentication core: password
// sign-up and sign-in, HMAC-signed tokens bound to Redis-backed
// sessions, and revocation that takes effect immediately under
// ledger-checked validation.
//
// Every issued token carries a sessionKey claim naming a server-side
// ledger row. Signature-only validation trusts the token alone;
// ledger-checked validation also requires the row to be live, so
// sign-out and sign-out-everywhere are enforceable before expiry.
//
// Typical wiring:
//
//	engine, err := authgate.New().
//		WithConfig(cfg).
//		WithRedis(redisClient).
//		WithUserStore(store).
//		Build()
//
// The middleware package adapts the engine to net/http with tiered
// route guards and environment-aware cookie policy.
package authgate
