// Package jwt implements the stateless token codec: HMAC-SHA256 signed
// tokens carrying a typed claim set that binds each token to a session
// ledger row through the sessionKey claim.
//
// Only HS256 is accepted at verification time; alg-substitution tokens
// are rejected before the key func runs. Expiry is enforced with zero
// leeway, and all verification failures surface as [ErrTokenInvalid].
package jwt
