// Package errors provides the unified error type for apiutils.
//
// Every failure the package surfaces, from startup configuration problems
// and unknown settings to token rejections and disabled features, is an *AppError
// carrying a machine-readable code and the HTTP status a host framework
// should answer with. Token rejections additionally carry a coarse reason
// code; the underlying cause never reaches the client.
package errors
