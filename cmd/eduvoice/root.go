package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/eduvoice/config"
	"github.com/lixenwraith/eduvoice/store"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

// cli is the state shared by every command after PersistentPreRunE
type cli struct {
	cfgFile string
	debug   bool

	loader  *config.Loader
	cfg     config.Config
	log     *slog.Logger
	logFile *os.File
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "eduvoice",
		Short: "Voice-narrated quizzes in the terminal",
		Long: `EduVoice reads multiple-choice questions aloud, plays answer feedback sounds
and ambient music, and keeps a history of played quizzes.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { c.teardown() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, c, playFlags{count: -1})
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: search $XDG_CONFIG_HOME/eduvoice, ~/.eduvoice, .)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "write debug logs to log.file")

	root.AddCommand(
		newPlayCmd(c),
		newHistoryCmd(c),
		newTracksCmd(c),
		newSfxCmd(c),
		newConfigCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	c.loader = config.NewLoader(config.Options{File: c.cfgFile})
	cfg, err := c.loader.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log, c.logFile = setupLogging(c.debug || cfg.Log.Debug, cfg.Log.File)
	c.log.Debug("command started", "command", cmd.CommandPath(), "config", c.loader.File())
	return nil
}

func (c *cli) teardown() {
	if c.logFile != nil {
		c.logFile.Close()
		c.logFile = nil
	}
}

// openStore opens the history database for one-shot commands
func (c *cli) openStore() (*store.DB, *store.Repository, error) {
	db, err := store.Open(c.cfg.Store.Path, c.log)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	return db, store.NewRepository(db), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "eduvoice %s\n", version)
		},
	}
}
