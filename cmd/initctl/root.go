package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"prodflow/internal/config"
	"prodflow/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cli carries the state shared by every subcommand
type cli struct {
	jsonOutput bool
	envFile    string
	app        *container.Container
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	state := &cli{}

	root := &cobra.Command{
		Use:           "initctl",
		Short:         "Manage product initiatives from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if state.app == nil {
				return nil
			}
			return state.app.Shutdown(context.Background())
		},
	}
	root.PersistentFlags().BoolVar(&state.jsonOutput, "json", false, "Print results as JSON")
	root.PersistentFlags().StringVar(&state.envFile, "env-file", ".env", "Environment file to load before reading configuration")

	root.AddCommand(
		newMigrateCmd(state),
		newSweepCmd(state),
		newRankCmd(state),
		newExportCmd(state),
		newPromoteCmd(state),
		newTransitionCmd(state),
		newFinalizeCmd(state),
		newEscalateCmd(state),
	)
	return root
}

func (s *cli) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.envFile != "" {
		if err := godotenv.Load(s.envFile); err != nil {
			log.Printf("[initctl] %s not loaded, using process environment", s.envFile)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s.cfg = cfg
	if cfg.UsesMemoryStore() {
		log.Printf("[initctl] WARNING: DATABASE_URL is not set, operating on an empty in-memory store")
	}

	app, err := container.New(cfg)
	if err != nil {
		return err
	}
	if err := app.Init(ctx); err != nil {
		return err
	}
	s.app = app
	return nil
}

// print writes v as indented JSON or through the text renderer
func (s *cli) print(w io.Writer, v interface{}, text func(io.Writer)) error {
	if s.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func fprintf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
