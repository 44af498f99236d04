package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resonate",
	Short: "Personalized listening sessions from your play history",
	Long:  "Resonate builds personalized video sessions from recency and preference weights. Single Go binary, SQLite storage.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(dislikeCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(searchCmd)
}
