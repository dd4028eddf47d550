package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"discsplit/internal/extract"
	"discsplit/internal/services"
	"discsplit/internal/textutil"
)

// Track describes one track offered for naming.
type Track struct {
	Index     int
	Label     string
	Suggested string
}

// Collector gathers album metadata and per-track names. An empty name in the
// returned slice discards that track.
type Collector interface {
	Album(suggested extract.Album) (extract.Album, error)
	TrackNames(tracks []Track) ([]string, error)
}

// discardToken drops a track that has a suggested name.
const discardToken = "-"

// Interactive asks on Out and reads answers from In.
type Interactive struct {
	Out       io.Writer
	AssumeYes bool

	in *bufio.Reader
}

// NewInteractive wraps in and out.
func NewInteractive(in io.Reader, out io.Writer, assumeYes bool) *Interactive {
	return &Interactive{Out: out, AssumeYes: assumeYes, in: bufio.NewReader(in)}
}

// Album asks for artist and album until the user confirms.
func (p *Interactive) Album(suggested extract.Album) (extract.Album, error) {
	for {
		artist, err := p.ask(withDefault("Artist name", suggested.Artist))
		if err != nil {
			return extract.Album{}, err
		}
		album, err := p.ask(withDefault("Album name", suggested.Title))
		if err != nil {
			return extract.Album{}, err
		}
		result := extract.Album{
			Artist: textutil.CleanName(orDefault(artist, suggested.Artist)),
			Title:  textutil.CleanName(orDefault(album, suggested.Title)),
		}
		ok, err := p.confirm(fmt.Sprintf("%q by %s. Is this correct? y/n: ", result.Title, result.Artist))
		if err != nil {
			return extract.Album{}, err
		}
		if ok {
			return result, nil
		}
	}
}

// TrackNames asks for one name per track until the user confirms the list.
func (p *Interactive) TrackNames(tracks []Track) ([]string, error) {
	for {
		fmt.Fprintln(p.Out, "Please enter the track names. If you wish to discard a track, simply hit enter.")
		names := make([]string, len(tracks))
		for i, track := range tracks {
			label := fmt.Sprintf("Track %d (%s) name", track.Index, track.Label)
			answer, err := p.ask(withDefault(label, track.Suggested))
			if err != nil {
				return nil, err
			}
			names[i] = resolveName(answer, track.Suggested)
		}

		fmt.Fprintln(p.Out, "Confirm:")
		for i, name := range names {
			if name == "" {
				fmt.Fprintf(p.Out, "Track %d is DISCARDED\n", tracks[i].Index)
			} else {
				fmt.Fprintf(p.Out, "Track %d is %q\n", tracks[i].Index, name)
			}
		}
		ok, err := p.confirm("Is this correct? y/n: ")
		if err != nil {
			return nil, err
		}
		if ok {
			return names, nil
		}
	}
}

func (p *Interactive) ask(label string) (string, error) {
	fmt.Fprint(p.Out, label+": ")
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", services.Wrap(services.ErrConfiguration, "prompt", "read answer", "input closed before all answers were given", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *Interactive) confirm(question string) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}
	fmt.Fprint(p.Out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return false, services.Wrap(services.ErrConfiguration, "prompt", "read answer", "input closed before confirmation", err)
	}
	return strings.TrimSpace(line) == "y", nil
}

func resolveName(answer, suggested string) string {
	answer = strings.TrimSpace(answer)
	switch {
	case suggested != "" && answer == discardToken:
		return ""
	case answer == "":
		return textutil.CleanName(suggested)
	default:
		return textutil.CleanName(answer)
	}
}

func withDefault(label, def string) string {
	if def == "" {
		return label
	}
	return fmt.Sprintf("%s [%s]", label, def)
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
