// Package main implements the imagine command. It runs the read API, the
// scheduled collector, and the generation worker as separate subcommands
// sharing one configuration, and provides migration and queue inspection
// tools for operators.
package main
