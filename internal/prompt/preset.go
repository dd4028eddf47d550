package prompt

import (
	"fmt"

	"discsplit/internal/extract"
	"discsplit/internal/services"
	"discsplit/internal/textutil"
)

// Preset answers from values supplied up front, typically command-line flags.
type Preset struct {
	Artist     string
	AlbumTitle string
	// Names, when non-nil, must hold one entry per track; "" discards.
	Names []string
}

// Album returns the preset values, falling back to suggestions.
func (p Preset) Album(suggested extract.Album) (extract.Album, error) {
	album := extract.Album{
		Artist: textutil.CleanName(orDefault(p.Artist, suggested.Artist)),
		Title:  textutil.CleanName(orDefault(p.AlbumTitle, suggested.Title)),
	}
	if album.Artist == "" || album.Title == "" {
		return extract.Album{}, services.Wrap(services.ErrConfiguration, "prompt", "album", "artist and album are required (--artist, --album)", nil)
	}
	return album, nil
}

// TrackNames returns the preset names, or the suggested names when none were
// given.
func (p Preset) TrackNames(tracks []Track) ([]string, error) {
	if p.Names != nil {
		if len(p.Names) != len(tracks) {
			return nil, services.Wrap(services.ErrConfiguration, "prompt", "track names",
				fmt.Sprintf("%d --track values given for %d tracks", len(p.Names), len(tracks)), nil)
		}
		names := make([]string, len(p.Names))
		for i, name := range p.Names {
			names[i] = textutil.CleanName(name)
		}
		return names, nil
	}

	names := make([]string, len(tracks))
	for i, track := range tracks {
		if track.Suggested == "" {
			return nil, services.Wrap(services.ErrConfiguration, "prompt", "track names",
				fmt.Sprintf("track %d has no name; pass --track for every track", track.Index), nil)
		}
		names[i] = textutil.CleanName(track.Suggested)
	}
	return names, nil
}
