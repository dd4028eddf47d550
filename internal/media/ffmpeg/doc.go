// Package ffmpeg builds ffmpeg command lines for extraction jobs.
//
// Time windows seek after the input for sample-accurate cuts. Byte windows
// use -skip_initial_bytes so DVD-Audio tracks start at their first sector.
package ffmpeg
