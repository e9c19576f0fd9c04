// Package middleware adapts the authgate engine to net/http.
//
// # Guards
//
//   - [Guard] — enforce an access tier with the engine's validation mode.
//   - [GuardWithMode] — per-route validation mode override.
//   - [RequireAuth], [OptionalAuth] — shorthands for the common tiers.
//
// Guards extract the credential (cookie first, then Bearer header),
// delegate validation to the engine, and attach the resulting principal
// to the request context for [PrincipalFromContext].
//
// # Cookie policy
//
// [BuildAuthCookie] centralizes the auth cookie attributes so issuing
// and clearing paths can never drift apart. Only the development
// environment relaxes Secure and SameSite.
//
// This package translates HTTP semantics into engine calls and makes no
// authentication decisions of its own.
package middleware
