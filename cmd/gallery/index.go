package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.olografix.dev/gallery-tools/internal/config"
	"go.olografix.dev/gallery-tools/internal/gallery"
	"go.olografix.dev/gallery-tools/internal/magick"
)

var (
	indexExtensions []string
	indexThumbSize  []int
	indexDryRun     bool
	indexEngine     string
	indexConfigFile string
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Generate index.json manifests and thumbnails for a gallery",
	Long: `Walk the album directories under the given gallery root, validate images,
synchronize thumbnails, and write per-album and root index.json manifests.
Manifests are only rewritten when their content actually changed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		extensions := indexExtensions
		width, height := 0, 0

		if indexConfigFile != "" {
			file, err := config.Load(indexConfigFile)
			if err != nil {
				log.Error().Err(err).Msg("Could not load config file")
				return err
			}
			if !cmd.Flags().Changed("extensions") {
				extensions = file.Extensions
			}
			if !cmd.Flags().Changed("thumbnail-size") {
				width, height = file.Thumbnail.Width, file.Thumbnail.Height
			}
		}
		if width == 0 || height == 0 {
			if len(indexThumbSize) != 2 {
				return fmt.Errorf("--thumbnail-size wants exactly two values, got %d", len(indexThumbSize))
			}
			width, height = indexThumbSize[0], indexThumbSize[1]
		}

		var resizer gallery.Resizer
		switch indexEngine {
		case "magick":
			if err := magick.Check(); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				fmt.Fprintln(os.Stderr, magick.InstallHint)
				return err
			}
			resizer = magick.Tool{Quality: gallery.ThumbQuality}
		case "builtin":
			resizer = gallery.ImagingResizer{}
		default:
			return fmt.Errorf("unknown engine %q (want magick or builtin)", indexEngine)
		}

		cfg := gallery.NewConfig(args[0], extensions, width, height, indexDryRun)
		if cfg.DryRun {
			log.Info().Msg("Dry run: no files will be written")
		}

		sum, err := gallery.NewIndexer(cfg, resizer).Run()
		if err != nil {
			log.Error().Err(err).Msg("Indexing failed")
			return err
		}

		log.Info().
			Int("albums", sum.Albums).
			Int("images", sum.Images).
			Int("skipped", sum.SkippedImages).
			Int("thumbnails", sum.ThumbsBuilt).
			Int("manifests", sum.ManifestsWritten).
			Msg("Processing completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringSliceVar(&indexExtensions, "extensions", gallery.DefaultExtensions, "Image extensions to include")
	indexCmd.Flags().IntSliceVar(&indexThumbSize, "thumbnail-size", []int{300, 300}, "Thumbnail size in pixels (width,height)")
	indexCmd.Flags().BoolVar(&indexDryRun, "dry-run", false, "Show what would be done without making changes")
	indexCmd.Flags().StringVar(&indexEngine, "engine", "magick", "Thumbnail engine: magick (ImageMagick convert) or builtin")
	indexCmd.Flags().StringVarP(&indexConfigFile, "config", "c", "", "Path to gallery.yaml settings file")
}
