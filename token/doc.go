// Package token validates and issues the JWT bearer tokens that protect
// the HTTP surface.
//
// Validation verifies the HMAC signature with the configured algorithm and
// then checks issuer, audience, and expiry. When JWT_SECRET is still the
// development default, a state the config package only permits in the
// development environment, signatures are not verifiable; tokens are then
// decoded unverified and a warning is logged on every call.
//
// Issuance exists solely for the development login endpoint and is gated by
// ENABLE_LOGIN. Roles are embedded verbatim, without validation.
package token
