// Package audio picks the multichannel elementary stream to extract from a
// probed disc source.
//
// Streams with two or fewer channels are discarded. Survivors are ranked by
// the position of their codec in a caller-supplied priority list (per input
// domain, see config.Streams); unlisted codecs rank last and keep probe order.
// The result is the stream's position within the full probe, which is what
// ffmpeg's -map 0:N expects.
package audio
