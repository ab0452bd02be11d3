package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.olografix.dev/gallery-tools/internal/uploader"
)

var (
	publishInputDir string
	publishBucket   string
	publishRegion   string
	publishEndpoint string
	publishBaseURL  string
	publishPrefix   string
	publishForce    bool
	publishDryRun   bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload an indexed gallery to remote storage (S3/R2)",
	Long: `Upload a gallery directory (manifests, images, thumbnails) to S3-compatible
remote storage (AWS S3, Cloudflare R2, etc.).

Credentials are read from environment variables:
  - R2_ACCESS_KEY_ID / AWS_ACCESS_KEY_ID
  - R2_SECRET_ACCESS_KEY / AWS_SECRET_ACCESS_KEY`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := context.Background()

		var ul uploader.Uploader
		if !publishDryRun {
			var err error
			ul, err = uploader.NewS3Uploader(ctx, uploader.S3Config{
				Endpoint: publishEndpoint,
				Region:   publishRegion,
				Bucket:   publishBucket,
				BaseURL:  publishBaseURL,
			})
			if err != nil {
				log.Error().Err(err).Msg("Could not initialize uploader")
				return err
			}
		}

		var uploaded, skipped, failed int

		err := filepath.Walk(publishInputDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				log.Warn().Str("path", path).Err(err).Msg("Cannot access path")
				failed++
				return nil
			}
			if info.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(publishInputDir, path)
			if err != nil {
				log.Warn().Str("path", path).Err(err).Msg("Cannot compute relative path")
				failed++
				return nil
			}

			key := filepath.ToSlash(rel)
			if publishPrefix != "" {
				key = strings.TrimSuffix(publishPrefix, "/") + "/" + key
			}
			contentType := uploader.DetectContentType(path)

			if publishDryRun {
				log.Info().Str("key", key).Str("type", contentType).Msg("Would upload")
				uploaded++
				return nil
			}

			if !publishForce {
				exists, err := ul.Exists(ctx, key)
				if err != nil {
					log.Warn().Str("key", key).Err(err).Msg("Existence check failed")
					failed++
					return nil
				}
				if exists {
					log.Debug().Str("key", key).Msg("Already exists, skipping")
					skipped++
					return nil
				}
			}

			f, err := os.Open(path)
			if err != nil {
				log.Warn().Str("path", path).Err(err).Msg("Cannot open file")
				failed++
				return nil
			}
			defer f.Close()

			if err := ul.Upload(ctx, key, f, contentType); err != nil {
				log.Warn().Str("key", key).Err(err).Msg("Upload failed")
				failed++
				return nil
			}
			log.Info().Str("key", key).Msg("Uploaded")
			uploaded++
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("Could not walk gallery directory")
			return err
		}

		log.Info().
			Int("uploaded", uploaded).
			Int("skipped", skipped).
			Int("failed", failed).
			Msg("Publish complete")
		if failed > 0 {
			return fmt.Errorf("%d uploads failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVarP(&publishInputDir, "input", "i", "", "Gallery directory to upload (required)")
	publishCmd.Flags().StringVarP(&publishBucket, "bucket", "b", "", "S3 bucket name (required)")
	publishCmd.Flags().StringVarP(&publishRegion, "region", "r", "", "S3 region ('auto' for R2) (required)")
	publishCmd.Flags().StringVar(&publishEndpoint, "endpoint", "", "Custom S3 endpoint URL (for R2)")
	publishCmd.Flags().StringVar(&publishBaseURL, "base-url", "", "Public base URL for uploaded files")
	publishCmd.Flags().StringVar(&publishPrefix, "prefix", "gallery", "Prefix prepended to all keys")
	publishCmd.Flags().BoolVar(&publishForce, "force", false, "Upload even if files already exist")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Simulate the upload without writing anything")

	publishCmd.MarkFlagRequired("input")
	publishCmd.MarkFlagRequired("bucket")
	publishCmd.MarkFlagRequired("region")
}
