package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Print the current popular-movies page",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := initService()
		if err != nil {
			return err
		}

		payload, err := client.PopularMovies(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "popular movies")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	},
}

func init() {
	rootCmd.AddCommand(popularCmd)
}
