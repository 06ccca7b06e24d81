package main

import (
	"os"
	"path/filepath"

	"github.com/chazu/aerogeom/pkg/api"
	"github.com/chazu/aerogeom/pkg/logging"
	"github.com/chazu/aerogeom/pkg/registry"
	"github.com/chazu/aerogeom/pkg/settings"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds what the subcommands share once the root has set up.
type cli struct {
	configPath string
	envPath    string
	logLevel   string

	settings settings.Settings
	logger   *zap.Logger
	svc      *api.Service
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "aerogeom",
		Short:         "Parametric aircraft geometry: query and export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML settings file")
	pf.StringVar(&c.envPath, "env", ".env", "dotenv file, ignored when missing")
	pf.StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		c.checkCmd(),
		c.infoCmd(),
		c.pointCmd(),
		c.splinesCmd(),
		c.exportCmd(),
	)
	return root
}

func (c *cli) setup() error {
	s, err := settings.Load(c.configPath, c.envPath)
	if err != nil {
		return status.Wrap(status.InvalidParameter, "aerogeom", err)
	}
	if c.logLevel != "" {
		s.Log.Level = c.logLevel
	}
	logger, err := logging.New(s.Log)
	if err != nil {
		return status.Wrap(status.InvalidParameter, "aerogeom", err)
	}
	c.settings = s
	c.logger = logger
	c.svc = api.New(api.WithLogger(logger), api.WithEvalTimeout(s.EvalTimeout))
	return nil
}

// open loads the definition at path and opens it as a configuration.
func (c *cli) open(path string) (registry.Handle, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, status.Wrap(status.InvalidDocument, "aerogeom", err)
	}
	dh, err := c.svc.LoadSource(string(src))
	if err != nil {
		return 0, err
	}
	return c.svc.Open(dh)
}

// outputPath resolves relative export paths against the export directory.
func (c *cli) outputPath(p string) string {
	if c.settings.ExportDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.settings.ExportDir, p)
}
