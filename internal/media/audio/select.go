package audio

import (
	"fmt"
	"slices"
	"strings"

	"discsplit/internal/media/ffprobe"
	"discsplit/internal/services"
)

// Selection describes the multichannel stream chosen for extraction.
type Selection struct {
	Stream ffprobe.Stream
	// Position is the stream's place in the full probed stream list, counting
	// video and stereo streams. It is the value handed to the ffmpeg stream map.
	Position  int
	Rank      int
	Survivors int
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	return formatStreamSummary(s.Stream)
}

// SelectMultichannel returns the probe-order position of the best multichannel
// stream according to priority.
func SelectMultichannel(streams []ffprobe.Stream, priority []string) (int, error) {
	sel, err := Select(streams, priority)
	if err != nil {
		return -1, err
	}
	return sel.Position, nil
}

// Select filters streams to more than two channels and ranks the survivors by
// their codec's position in priority. Codecs missing from priority rank after
// every listed codec and keep their probe order among themselves.
func Select(streams []ffprobe.Stream, priority []string) (Selection, error) {
	candidates := buildCandidates(streams, priority)
	if len(candidates) == 0 {
		return Selection{Position: -1}, services.Wrap(
			services.ErrSelectionEmpty,
			"select",
			"filter streams",
			fmt.Sprintf("no stream with more than two channels among %d probed", len(streams)),
			nil,
		)
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return a.rank - b.rank
	})

	best := candidates[0]
	return Selection{
		Stream:    best.stream,
		Position:  best.position,
		Rank:      best.rank,
		Survivors: len(candidates),
	}, nil
}

type candidate struct {
	stream   ffprobe.Stream
	position int
	rank     int
}

func buildCandidates(streams []ffprobe.Stream, priority []string) []candidate {
	result := make([]candidate, 0, len(streams))
	for position, stream := range streams {
		if channelCount(stream) <= 2 {
			continue
		}
		result = append(result, candidate{
			stream:   stream,
			position: position,
			rank:     codecRank(stream.CodecName, priority),
		})
	}
	return result
}

func codecRank(codec string, priority []string) int {
	codec = strings.ToLower(strings.TrimSpace(codec))
	for i, entry := range priority {
		if strings.EqualFold(entry, codec) {
			return i
		}
	}
	return len(priority)
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	switch {
	case layout == "":
		return 0
	case strings.HasPrefix(layout, "7.1"):
		return 8
	case strings.HasPrefix(layout, "6.1"):
		return 7
	case strings.HasPrefix(layout, "5.1"):
		return 6
	case strings.HasPrefix(layout, "5.0"):
		return 5
	case strings.HasPrefix(layout, "4.0"), strings.HasPrefix(layout, "quad"):
		return 4
	case strings.HasPrefix(layout, "2.1"):
		return 3
	case strings.HasPrefix(layout, "stereo"), strings.HasPrefix(layout, "2.0"):
		return 2
	case strings.HasPrefix(layout, "mono"), strings.HasPrefix(layout, "1.0"):
		return 1
	}
	return 0
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 3)
	if codec := strings.TrimSpace(stream.CodecName); codec != "" {
		parts = append(parts, codec)
	}
	if ch := channelCount(stream); ch > 0 {
		parts = append(parts, fmt.Sprintf("%dch", ch))
	}
	if lang := stream.Language(); lang != "" {
		parts = append(parts, lang)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("stream %d", stream.Index)
	}
	return strings.Join(parts, " ")
}
