// Package archup is the archup command line: a cobra root command whose
// subcommands each map onto one flow or report.
package archup

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/arthur-debert/archup/internal/version"
	"github.com/arthur-debert/archup/pkg/cobrax/topics"
	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/confirm"
	"github.com/arthur-debert/archup/pkg/detect"
	"github.com/arthur-debert/archup/pkg/display"
	"github.com/arthur-debert/archup/pkg/flow"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var helpTopics embed.FS

// globalOptions holds the persistent flags
type globalOptions struct {
	verbosity  int
	configFile string
	assumeYes  bool
	dryRun     bool
	format     string
	overrides  []string
}

func (g *globalOptions) loadConfig() (*config.Config, error) {
	overrides, err := config.ParseOverrides(g.overrides)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(config.LoadOptions{File: g.configFile, Overrides: overrides})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("source", cfg.Source).Msg("Configuration loaded")
	return cfg, nil
}

// outputFormat resolves --format against stdout
func (g *globalOptions) outputFormat() (display.Format, error) {
	f, err := display.ParseFormat(g.format)
	if err != nil {
		return f, err
	}
	return f.Resolve(os.Stdout), nil
}

func (g *globalOptions) gate(cmd *cobra.Command, format display.Format) confirm.Gate {
	return confirm.ForTerminal(g.assumeYes, os.Stdin, cmd.OutOrStdout(), format.Styled())
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "archup",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, g)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVarP(&g.assumeYes, "yes", "y", false, MsgFlagYes)
	rootCmd.PersistentFlags().BoolVar(&g.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&g.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringArrayVar(&g.overrides, "set", nil, MsgFlagSet)

	rootCmd.AddGroup(&cobra.Group{ID: "flows", Title: "FLOWS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "inspect", Title: "INSPECT:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newSetupCmd(g))
	rootCmd.AddCommand(newBootstrapCmd(g))
	rootCmd.AddCommand(newDetectCmd(g))
	rootCmd.AddCommand(newStepsCmd(g))
	rootCmd.AddCommand(newPlanCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())

	source, err := fs.Sub(helpTopics, "topics")
	if err == nil {
		renderer := topics.NewPlainGlamourRenderer()
		if helpStyled {
			renderer = topics.NewGlamourRenderer()
		}
		_, err = topics.Install(rootCmd, source, topics.Options{
			Extensions: []string{".md"},
			Renderer:   renderer,
		})
	}
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

func newSetupCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "setup",
		Short:   MsgSetupShort,
		Long:    MsgSetupLong,
		GroupID: "flows",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, g)
		},
	}
}

func runSetup(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	format, err := g.outputFormat()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if g.dryRun && format != display.FormatJSON {
		fmt.Fprintln(out, MsgDryRunNotice)
	}

	_, err = flow.Setup(cmd.Context(), flow.Options{
		Config:   cfg,
		Gate:     g.gate(cmd, format),
		Reporter: display.NewConsoleReporter(out, format, cfg.Display),
		DryRun:   g.dryRun,
	})
	return err
}

func newBootstrapCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "bootstrap",
		Short:   MsgBootstrapShort,
		Long:    MsgBootstrapLong,
		GroupID: "flows",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			format, err := g.outputFormat()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			err = flow.Bootstrap(cmd.Context(), flow.Options{
				Config:   cfg,
				Gate:     g.gate(cmd, format),
				Progress: display.FetchProgress(out, format),
				DryRun:   g.dryRun,
			})
			if err == nil && g.dryRun && format != display.FormatJSON {
				fmt.Fprintln(out, MsgBootstrapDryRun)
			}
			return err
		},
	}
}

func newDetectCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "detect",
		Short:   MsgDetectShort,
		Long:    MsgDetectLong,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			format, err := g.outputFormat()
			if err != nil {
				return err
			}

			env := detect.New(cfg.Detect).Detect(cmd.Context())
			findings := detect.Assess(env)
			if err := display.RenderEnvironment(cmd.OutOrStdout(), format, env, findings); err != nil {
				return err
			}
			return findings.Err()
		},
	}
}

func newStepsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "steps",
		Short:   MsgStepsShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			format, err := g.outputFormat()
			if err != nil {
				return err
			}
			p, err := flow.Pipeline(flow.Options{Config: cfg, DryRun: true})
			if err != nil {
				return err
			}
			return display.RenderSteps(cmd.OutOrStdout(), format, p.Steps())
		},
	}
}

func newPlanCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "plan",
		Short:   MsgPlanShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			format, err := g.outputFormat()
			if err != nil {
				return err
			}
			p, err := flow.Pipeline(flow.Options{Config: cfg, DryRun: true})
			if err != nil {
				return err
			}
			return display.RenderPlan(cmd.OutOrStdout(), format, p.Steps(), g.dryRun)
		},
	}
}

func newConfigCmd(g *globalOptions) *cobra.Command {
	var template bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Example: MsgConfigExample,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if template {
				_, err := fmt.Fprint(out, config.GenerateConfigContent())
				return err
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.ToTOML()
			if err != nil {
				return err
			}
			if cfg.Source != "" {
				fmt.Fprintf(out, MsgConfigSource, cfg.Source)
			} else {
				fmt.Fprint(out, MsgConfigNoSource)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVarP(&template, "template", "t", false, MsgFlagTemplate)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}
