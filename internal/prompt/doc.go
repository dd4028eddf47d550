// Package prompt collects album metadata and track names.
//
// Interactive reproduces the terminal flow: artist and album behind a y/n
// confirmation, then one name per track (empty discards it) followed by a
// confirmation listing. Preset serves the same answers from flags for
// unattended runs.
package prompt
