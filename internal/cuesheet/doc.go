// Package cuesheet parses single-file cue sheets into album metadata and
// track offsets.
//
// Offsets are kept in 75 fps frames; each track's length runs to the next
// track's INDEX 01 and the final track is left unbounded. Sheets written by
// older Windows rippers in a legacy code page are transcoded to UTF-8.
package cuesheet
