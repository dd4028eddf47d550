package audio

import (
	"errors"
	"testing"

	"discsplit/internal/media/ffprobe"
	"discsplit/internal/services"
)

var videoPriority = []string{"ac3", "dts", "pcm_dvd"}

func TestSelectMultichannelPrefersPriorityOrder(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "audio", CodecName: "ac3", Channels: 6},
		{Index: 1, CodecType: "audio", CodecName: "dts", Channels: 6},
		{Index: 2, CodecType: "audio", CodecName: "eac3", Channels: 8},
		{Index: 3, CodecType: "audio", CodecName: "pcm_dvd", Channels: 2},
	}

	got, err := SelectMultichannel(streams, videoPriority)
	if err != nil {
		t.Fatalf("SelectMultichannel returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected ac3 stream at position 0, got %d", got)
	}
}

func TestSelectMultichannelNeverPicksStereo(t *testing.T) {
	streams := []ffprobe.Stream{
		{CodecType: "audio", CodecName: "pcm_dvd", Channels: 2},
		{CodecType: "audio", CodecName: "eac3", Channels: 6},
	}
	got, err := SelectMultichannel(streams, videoPriority)
	if err != nil {
		t.Fatalf("SelectMultichannel returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected unknown multichannel codec over stereo pcm, got %d", got)
	}
}

func TestSelectReturnsPositionInFullList(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "video", CodecName: "mpeg2video"},
		{Index: 1, CodecType: "audio", CodecName: "ac3", Channels: 2},
		{Index: 2, CodecType: "audio", CodecName: "dts", Channels: 6},
		{Index: 3, CodecType: "audio", CodecName: "ac3", Channels: 6},
	}
	sel, err := Select(streams, videoPriority)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if sel.Position != 3 {
		t.Fatalf("expected position 3, got %d", sel.Position)
	}
	if sel.Survivors != 2 {
		t.Fatalf("expected 2 survivors, got %d", sel.Survivors)
	}
	if sel.Label() != "ac3 6ch" {
		t.Fatalf("unexpected label %q", sel.Label())
	}
}

func TestSelectUnknownCodecsKeepProbeOrder(t *testing.T) {
	streams := []ffprobe.Stream{
		{CodecType: "audio", CodecName: "truehd", Channels: 8},
		{CodecType: "audio", CodecName: "eac3", Channels: 6},
	}
	got, err := SelectMultichannel(streams, videoPriority)
	if err != nil {
		t.Fatalf("SelectMultichannel returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected first unknown codec to win, got %d", got)
	}
}

func TestSelectUsesChannelLayoutFallback(t *testing.T) {
	streams := []ffprobe.Stream{
		{CodecType: "audio", CodecName: "dts", ChannelLayout: "stereo"},
		{CodecType: "audio", CodecName: "mlp", ChannelLayout: "5.1(side)"},
	}
	got, err := SelectMultichannel(streams, []string{"mlp", "ac3", "dts", "pcm_dvd"})
	if err != nil {
		t.Fatalf("SelectMultichannel returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected mlp stream at position 1, got %d", got)
	}
}

func TestSelectFailsWithoutMultichannel(t *testing.T) {
	streams := []ffprobe.Stream{
		{CodecType: "video"},
		{CodecType: "audio", CodecName: "ac3", Channels: 2},
	}
	got, err := SelectMultichannel(streams, videoPriority)
	if err == nil {
		t.Fatal("expected error when no multichannel stream exists")
	}
	if !errors.Is(err, services.ErrSelectionEmpty) {
		t.Fatalf("expected ErrSelectionEmpty, got %v", err)
	}
	if got != -1 {
		t.Fatalf("expected -1 position on failure, got %d", got)
	}
}
