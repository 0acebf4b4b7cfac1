package main

import (
	"os"

	"github.com/opsdeck/cheatsheets/api"
	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/spf13/cobra"
)

var (
	exit       = os.Exit
	configPath string
	debug      bool
	contentDir string
)

// NewRootCmd creates the root 'cheats' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cheats",
		Short:         "DevOps cheatsheet catalog: web site, API, CLI and MCP tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to cheats config JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content-dir", "", "Path to a cheatsheet library (overrides config file)")

	sess := &session{}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) { sess.close() }

	rootCmd.AddCommand(
		newServeCmd(),
		newExportCmd(sess),
		newValidateCmd(),
		newShowCmd(sess),
		newMCPCmd(sess),
	)
	api.AttachCLICommands(rootCmd, sess.service)
	return rootCmd
}

// loadConfig reads the config file and applies env and flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if contentDir != "" {
		cfg.Content.Source = constants.ContentSourceDir
		cfg.Content.Dir = contentDir
	}
	if debug {
		cfg.Log.Level = "debug"
		utils.SetMode(constants.LoggerModeDebug)
	}
	if err := utils.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session builds dependencies on first use so that commands which never
// touch the catalog do not open storage.
type session struct {
	cfg     *config.Config
	deps    *api.Dependencies
	cleanup func()
}

func (s *session) dependencies(cmd *cobra.Command) (*api.Dependencies, error) {
	if s.deps != nil {
		return s.deps, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	deps, cleanup, err := api.InitializeDependencies(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	s.cfg, s.deps, s.cleanup = cfg, deps, cleanup
	return deps, nil
}

func (s *session) service(cmd *cobra.Command) (api.CheatsheetService, error) {
	deps, err := s.dependencies(cmd)
	if err != nil {
		return nil, err
	}
	return api.NewService(deps, nil), nil
}

func (s *session) close() {
	if s.cleanup != nil {
		s.cleanup()
	}
	s.cfg, s.deps, s.cleanup = nil, nil, nil
}
