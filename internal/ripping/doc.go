// Package ripping drives one discsplit run end to end.
//
// Pipeline.Run detects the input format, locks the output directory, and
// follows one flow per format:
//
//   - DVD-Video: largest VTS title, chapters from VTS_<id>_0.IFO, segments
//     concatenated and cut by chapter time.
//   - DVD-Audio: largest ATS title, tracks decoded from ATS_<id>_0.IFO,
//     segments concatenated and cut by sector offset.
//   - Cue sheet: tracks cut by time from the referenced media file.
//   - SACD: sacd_extract writes DSF files that are transcoded whole.
//
// Every collaborator is injectable so tests run without ffmpeg, ffprobe, or
// sacd_extract installed.
package ripping
