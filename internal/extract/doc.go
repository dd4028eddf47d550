// Package extract maps decoded disc structure onto extraction jobs.
//
// The resolvers share the Job value type: ResolveChapters walks DVD-Video
// chapter lengths with a cumulative cursor, ResolveSectors converts DVD-Audio
// sector ranges into byte offsets, ResolveCue anchors cue sheet tracks to the
// sheet's media file, and ResolveFiles turns per-track intermediates into
// whole-file jobs. Track order from the source is preserved and an empty name
// drops a track without disturbing its neighbours.
package extract
