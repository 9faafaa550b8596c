// Package util holds the small cross-cutting helpers the service leans on:
// slice membership, human-readable size parsing, secret masking for logs,
// and input sanitization for values arriving from the environment or from
// request bodies.
package util
