// Package preflight provides readiness checks for the filesystem paths and
// external executables that discsplit depends on.
//
// The "discsplit check" command renders every result. The split command
// calls CheckSystemDeps before touching the disc so a missing ffmpeg is
// reported before any prompt is shown.
package preflight
