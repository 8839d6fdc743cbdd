package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <movie-id>",
	Short: "Print ranked similar movies for a subject movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return eris.Errorf("movie id must be a positive integer, got %q", args[0])
		}

		svc, _, err := initService()
		if err != nil {
			return err
		}

		result, err := svc.Recommend(cmd.Context(), id)
		if err != nil {
			return eris.Wrap(err, "recommend")
		}

		zap.L().Info("recommendations ready",
			zap.Int("subject_id", result.OriginalMovie.ID),
			zap.String("subject_title", result.OriginalMovie.Title),
			zap.Int("results", len(result.Results)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}
