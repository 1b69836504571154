package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tokencount-backend/internal/bootstrap"
	"tokencount-backend/internal/extract"
	"tokencount-backend/internal/shared/apperrors"
	"tokencount-backend/internal/shared/config"
	"tokencount-backend/internal/shared/storage/db"
	"tokencount-backend/internal/shared/telemetry"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var extensionTypes = map[string]string{
	".txt":  extract.MimePlainText,
	".text": extract.MimePlainText,
	".pdf":  extract.MimePDF,
	".docx": extract.MimeDOCX,
	".xlsx": extract.MimeXLSX,
}

// mediaTypeFor returns the declared type for path, preferring an explicit flag.
func mediaTypeFor(path, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("cannot infer media type for %s; pass --mime", path)
}

// newApp assembles the service. With persist set it connects to DATABASE_URL;
// otherwise an in-memory store is used. The returned close func must be called.
func newApp(ctx context.Context, persist bool) (*bootstrap.App, func(), error) {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel)
	if !persist {
		app, err := bootstrap.BuildWithDB(cfg, nil)
		return app, func() {}, err
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting database: %w", err)
	}
	app, err := bootstrap.BuildWithDB(cfg, sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return app, func() { closeDB(sqlDB) }, nil
}

func closeDB(sqlDB *sql.DB) {
	if err := sqlDB.Close(); err != nil {
		telemetry.Warn("tokenctl.db_close_failed", map[string]any{"error": err.Error()})
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// userError keeps internal causes out of CLI output except in verbose mode.
func userError(err error, verbose bool) error {
	if verbose || apperrors.KindOf(err) != apperrors.KindInternal {
		return err
	}
	return errors.New(apperrors.PublicMessage(err))
}

var rootCmd = &cobra.Command{
	Use:          "tokenctl",
	Short:        "Analyze documents and inspect stored analyses",
	SilenceUsage: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Extract text from FILE and report its token, byte, character and word counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mimeFlag, _ := cmd.Flags().GetString("mime")
		owner, _ := cmd.Flags().GetString("owner")
		persist, _ := cmd.Flags().GetBool("persist")
		verbose, _ := cmd.Flags().GetBool("verbose")

		mediaType, err := mediaTypeFor(args[0], mimeFlag)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		ctx := cmd.Context()
		app, closeFn, err := newApp(ctx, persist)
		if err != nil {
			return err
		}
		defer closeFn()

		doc, err := app.AnalysisService.Analyze(ctx, data, mediaType, owner)
		if err != nil {
			return userError(err, verbose)
		}

		out := map[string]any{
			"mediaType": mediaType,
			"encoding":  app.Tokenizer.EncodingName(),
			"analysis":  doc.Analysis,
		}
		if persist {
			out["documentId"] = doc.ID
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a stored analysis owned by --owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		owner, _ := cmd.Flags().GetString("owner")
		withAudit, _ := cmd.Flags().GetBool("audit")
		verbose, _ := cmd.Flags().GetBool("verbose")
		if id <= 0 || owner == "" {
			return errors.New("--id and --owner are required")
		}

		ctx := cmd.Context()
		app, closeFn, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer closeFn()

		view, err := app.AnalysisService.GetDocumentStatus(ctx, id, owner)
		if err != nil {
			return userError(err, verbose)
		}
		out := map[string]any{"status": view}
		if withAudit {
			entries, err := app.AnalysisService.AuditTrail(ctx, id, owner)
			if err != nil {
				return userError(err, verbose)
			}
			out["audit"] = entries
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported media types",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, mt := range extract.Default().MediaTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), mt)
		}
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the document store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, closeFn, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer closeFn()
		if err := app.AnalysisService.TestConnection(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show internal error detail")

	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("mime", "", "Declared media type (inferred from extension when empty)")
	analyzeCmd.Flags().String("owner", "", "Owner identifier recorded with the analysis")
	analyzeCmd.Flags().Bool("persist", false, "Store the analysis in DATABASE_URL")

	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Int64("id", 0, "Document ID")
	statusCmd.Flags().String("owner", "", "Owner identifier")
	statusCmd.Flags().Bool("audit", false, "Include the audit trail")

	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(pingCmd)
}
