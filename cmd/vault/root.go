package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fenggwsx/SlashVault/internal/client"
	"github.com/fenggwsx/SlashVault/internal/config"
	"github.com/fenggwsx/SlashVault/internal/logging"
	"github.com/fenggwsx/SlashVault/internal/opener"
	"github.com/fenggwsx/SlashVault/internal/passcode"
	"github.com/fenggwsx/SlashVault/internal/storage/sqlite"
	"github.com/fenggwsx/SlashVault/internal/thumbnail"
	"github.com/fenggwsx/SlashVault/internal/vault"
)

var (
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "slashvault",
	Short: "A passcode-gated vault for hidden notes and files",
	Long: `SlashVault keeps notes and copies of files behind a 4-digit passcode.
The first code entered becomes the passcode.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding the vault document, files and preferences")
}

func run(ctx context.Context) error {
	if dataDir != "" {
		if err := os.Setenv("SLASHVAULT_DATA_DIR", dataDir); err != nil {
			return fmt.Errorf("set data dir: %w", err)
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	prefs, err := sqlite.NewStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer prefs.Close()
	if err := prefs.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate preferences: %w", err)
	}

	gate, err := passcode.NewGate(ctx, prefs, logger.Named("passcode"))
	if err != nil {
		return err
	}

	store := vault.NewStore(cfg.Vault.Document, logger.Named("vault"))
	thumbs := thumbnail.NewGenerator(cfg.Vault.ThumbsDir, cfg.Thumbnail)
	importer := vault.NewImporter(store, cfg.Vault.FilesDir, thumbs, logger.Named("import"),
		vault.WithDedupeNames(cfg.Vault.DedupeNames))

	app := client.NewApp(client.Deps{
		Context:  ctx,
		Config:   cfg.Client,
		Gate:     gate,
		Store:    store,
		Importer: importer,
		Opener:   opener.NewSystem(),
		Logger:   logger.Named("client"),
	})

	logger.Info("starting", zap.String("data_dir", cfg.DataDir))
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("client exited: %w", err)
	}
	return nil
}
