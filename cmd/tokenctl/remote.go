package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"tokencount-backend/internal/client"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Call a running token count service over HTTP",
}

func remoteClient(cmd *cobra.Command) *client.Client {
	base, _ := cmd.Flags().GetString("url")
	if base == "" {
		base = os.Getenv("TOKENCOUNT_URL")
	}
	return client.New(base)
}

var remoteAnalyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Upload FILE for analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mimeFlag, _ := cmd.Flags().GetString("mime")
		owner, _ := cmd.Flags().GetString("owner")
		mediaType, err := mediaTypeFor(args[0], mimeFlag)
		if err != nil {
			return err
		}
		resp, err := remoteClient(cmd).AnalyzeFile(cmd.Context(), args[0], mediaType, owner)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch a stored analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		owner, _ := cmd.Flags().GetString("owner")
		if id <= 0 || owner == "" {
			return errors.New("--id and --owner are required")
		}
		resp, err := remoteClient(cmd).DocumentStatus(cmd.Context(), id, owner)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var remoteHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the service is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := remoteClient(cmd).Health(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.PersistentFlags().String("url", "", "Service base URL (default $TOKENCOUNT_URL or "+client.DefaultBaseURL+")")

	remoteCmd.AddCommand(remoteAnalyzeCmd)
	remoteAnalyzeCmd.Flags().String("mime", "", "Declared media type (inferred from extension when empty)")
	remoteAnalyzeCmd.Flags().String("owner", "", "Owner identifier sent as X-User-Id")

	remoteCmd.AddCommand(remoteStatusCmd)
	remoteStatusCmd.Flags().Int64("id", 0, "Document ID")
	remoteStatusCmd.Flags().String("owner", "", "Owner identifier")

	remoteCmd.AddCommand(remoteHealthCmd)
}
