package cli

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var playWeight float64

var playCmd = &cobra.Command{
	Use:   "play <user> <video>",
	Short: "Record a play (bumps the preference weight)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := json.Marshal(map[string]float64{"weight": playWeight})
		data, err := NewClient().Post("/api/weight/"+url.PathEscape(args[0])+"/"+url.PathEscape(args[1]), body)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <user> <video>",
	Short: "Like a video (idempotent)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := NewClient().Post("/api/like/"+url.PathEscape(args[0])+"/"+url.PathEscape(args[1]), nil)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var dislikeCmd = &cobra.Command{
	Use:   "dislike <user> <video>",
	Short: "Dislike a video",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := NewClient().Post("/api/dislike/"+url.PathEscape(args[0])+"/"+url.PathEscape(args[1]), nil)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session <user>",
	Short: "Build a personalized session for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := NewClient().Get("/api/session/" + url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the video platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := NewClient().Get("/api/search?query=" + url.QueryEscape(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	playCmd.Flags().Float64Var(&playWeight, "weight", 0, "weight delta (0 means a plain play, counted as 1)")
}
