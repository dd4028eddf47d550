// Package main hosts the discsplit CLI entrypoint and command graph.
//
// The root command takes an input path and an output directory and hands
// them to the ripping pipeline. Subcommands cover configuration scaffolding,
// tool checks, and the run history ledger. Configuration is resolved once per
// invocation and shared through commandContext.
package main
