package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var opts splitOptions

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "discsplit <input-path> <output-dir>",
		Short: "Split DVD-Video, DVD-Audio, SACD, and cue sheet audio into lossless tracks",
		Long: `discsplit extracts one lossless file per named track.

input-path may be a DVD-Video or DVD-Audio directory (or its VIDEO_TS/AUDIO_TS
folder), a .cue sheet, or an SACD image.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if len(args) != 2 {
				return cmd.Usage()
			}
			opts.tracksSet = cmd.Flags().Changed("track")
			return runSplit(cmd, ctx, args[0], args[1], opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVar(&opts.artist, "artist", "", "Album artist (skips the prompt)")
	rootCmd.Flags().StringVar(&opts.album, "album", "", "Album title (skips the prompt)")
	rootCmd.Flags().StringArrayVar(&opts.tracks, "track", nil, "Track name in disc order; repeat once per track, empty discards")
	rootCmd.Flags().BoolVarP(&opts.assumeYes, "yes", "y", false, "Accept entered metadata without confirmation")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}
