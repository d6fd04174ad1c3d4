// Package cmd wires the clipcast command tree.
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipcast/internal/config"
	"clipcast/internal/logging"
)

const (
	ExitOK              = 0
	ExitCLIError        = 1
	ExitMissingDep      = 2
	ExitValidationError = 3
	ExitAuthError       = 4
	ExitUploadError     = 5
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

type ctxKey string

const configKey ctxKey = "config"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clipcast [video]",
		Short:         "Upload short vertical videos to YouTube Shorts and Instagram Reels",
		Long:          "Clipcast validates a short vertical video and publishes it to YouTube Shorts and Instagram Reels in one go. Point it at an .mp4, give it a title, and it handles authentication, retries, and per-platform formatting.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("load config: %v", err)}
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				cfg.Set("app.verbose", true)
			}
			if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
				rerootDataPaths(cfg, dataDir)
			}
			if err := logging.Setup(cfg.GetString("logging.level"), cfg.GetString("logging.file_path"), verbose); err != nil {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("set up logging: %v", err)}
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare `clipcast video.mp4 --title ...` behaves like `clipcast upload`.
			if len(args) == 0 {
				return cmd.Help()
			}
			return uploadExecute(cmd, args)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "Path to config file (JSON or YAML)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging")
	root.PersistentFlags().String("data-dir", "", "Directory for credentials, tokens, and sessions (default ./data)")

	bindUploadFlags(root.Flags())

	root.AddCommand(newUploadCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newOptimizeCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

// rerootDataPaths moves the default data-relative file paths under dir.
// Paths the user set explicitly (not under data/) are left alone.
func rerootDataPaths(cfg *config.Manager, dir string) {
	for _, key := range []string{
		"youtube.credentials_path",
		"youtube.token_path",
		"instagram.session_path",
	} {
		p := cfg.GetString(key)
		if rel, ok := strings.CutPrefix(p, "data/"); ok {
			cfg.Set(key, filepath.Join(dir, rel))
		}
	}
}

func configFrom(cmd *cobra.Command) *config.Manager {
	if v := cmd.Context().Value(configKey); v != nil {
		return v.(*config.Manager)
	}
	cfg, _ := config.Load("")
	return cfg
}
