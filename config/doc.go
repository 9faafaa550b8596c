// Package config resolves the process-wide configuration exactly once.
//
// Every recognized setting comes from a fixed registry; each is resolved at
// construction with the precedence environment variable > config file key >
// declared default, and the winning source is recorded. The constructed
// Config is immutable and safe for unsynchronized concurrent reads.
//
// Secret-flagged settings are masked with a fixed placeholder in the Items()
// export while staying fully readable through the typed accessors.
//
// Construction fails fast with a StartupConfig error when JWT_SECRET is
// still at its insecure default outside the development environment.
package config
