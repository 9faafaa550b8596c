// Package logger provides structured logging on top of zerolog.
//
// A process initializes the global logger once from config (logger.Init) and
// then logs through the package-level helpers or a component-tagged child
// (logger.WithComponent). Console and JSON formats are supported.
package logger
