// Package dvdaudio decodes the track layout of a DVD-Audio title set from its
// ATS_xx_0.IFO navigation file.
//
// A pointer at 0xCC gives the sector of the title table. Only the first title
// is expanded: its timing table yields 90 kHz presentation timestamps and its
// sector table yields absolute sectors into the concatenated AOB payload.
// Truncated input fails with services.ErrDecodeTruncated.
package dvdaudio
