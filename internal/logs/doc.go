// Package logs reads the discsplit log file for the "discsplit logs"
// command: the last N lines, then optionally every line appended afterwards.
package logs
