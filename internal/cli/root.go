package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/siteview/pkg/buildinfo"
	"github.com/matzehuels/siteview/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Global flags are bound to the CLI and applied in PersistentPreRunE, after
// the config file is loaded, so flags always win over the file.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Siteview browses generated site layouts",
		Long:         `Siteview requests candidate site layouts from a generation service and lets you page through them in the terminal, export them as SVG, PNG or JSON, or serve them to a browser.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			installHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			observability.Reset()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/siteview/config.toml)")
	flags.StringVar(&c.endpoint, "endpoint", "", "generation service URL")
	flags.StringVar(&c.locale, "locale", "", "locale for number formatting (e.g. en-US, de-DE)")

	root.AddCommand(c.browseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
