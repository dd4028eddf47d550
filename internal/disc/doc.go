// Package disc inspects extracted disc structures on the filesystem.
//
// Detect classifies an input path into a Kind so the ripping pipeline can pick
// a domain. ScanTitles groups VTS_/ATS_ segment files by title id and selects
// the largest title. Binary navigation decoding lives in the dvdaudio and
// dvdvideo subpackages.
package disc
