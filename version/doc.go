// Package version exposes the build identity reported by the /info
// endpoint and the startup log line.
//
// Version, git commit, branch, and build time are stamped at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/origon-labs/apiutils/version.Version=1.0.0"
//
// Values not stamped are recovered from the binary's embedded VCS build
// info when available.
package version
