// Package dvdvideo reads chapter lengths from DVD-Video title set IFO files.
//
// Only the first program chain is consulted. Cell playback times are summed
// per program using the chain's program map, so each returned PlaybackTime
// corresponds to one chapter as a player would present it.
package dvdvideo
