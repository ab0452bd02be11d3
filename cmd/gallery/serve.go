package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a gallery directory over HTTP for local preview",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		if _, err := os.Stat(serveDir); os.IsNotExist(err) {
			log.Error().Str("dir", serveDir).Msg("Directory does not exist")
			return fmt.Errorf("directory %s does not exist", serveDir)
		}

		addr := fmt.Sprintf(":%d", servePort)
		log.Info().
			Str("address", fmt.Sprintf("http://localhost%s", addr)).
			Str("directory", serveDir).
			Msg("Serving gallery")

		if err := http.ListenAndServe(addr, http.FileServer(http.Dir(serveDir))); err != nil {
			log.Error().Err(err).Msg("Server failed")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to serve on")
	serveCmd.Flags().StringVarP(&serveDir, "dir", "d", ".", "Gallery directory to serve")
}
