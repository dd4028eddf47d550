// Package dispatch runs extraction jobs as parallel ffmpeg processes.
//
// A run has three phases that never overlap: the title's segments are
// concatenated into one scratch file, every job reads that file concurrently,
// and the file is removed after the last process exits. Each job's exit status
// is collected into a Report; nothing is retried and nothing is cancelled once
// launched.
package dispatch
