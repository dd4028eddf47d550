package config

const (
	defaultConfigPath    = "~/.config/discsplit/config.toml"
	defaultLogDir        = "~/.local/share/discsplit/logs"
	defaultStateDir      = "~/.local/share/discsplit"
	defaultFFmpeg        = "ffmpeg"
	defaultFFprobe       = "ffprobe"
	defaultSACDExtract   = "sacd_extract"
	defaultExtension     = "flac"
	defaultCodec         = "flac"
	defaultDSDSampleRate = 176400
	defaultChapterMode   = "cell"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Tools: Tools{
			FFmpeg:      defaultFFmpeg,
			FFprobe:     defaultFFprobe,
			SACDExtract: defaultSACDExtract,
		},
		Output: Output{
			Extension:     defaultExtension,
			Codec:         defaultCodec,
			DSDSampleRate: defaultDSDSampleRate,
		},
		Streams: Streams{
			DVDVideo: []string{"ac3", "dts", "pcm_dvd"},
			DVDAudio: []string{"mlp", "ac3", "dts", "pcm_dvd"},
		},
		Chapters: Chapters{
			Mode: defaultChapterMode,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
