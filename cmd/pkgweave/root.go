// Package pkgweave wires the pkgweave command line.
package pkgweave

import (
	"embed"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/pkgweave/internal/version"
	"github.com/arthur-debert/pkgweave/pkg/cobrax/topics"
	"github.com/arthur-debert/pkgweave/pkg/config"
	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/arthur-debert/pkgweave/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	workspace  string
	configFile string
	format     string
	overrides  []string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "pkgweave",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			_, err := ui.ParseFormat(opts.format)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, "no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVarP(&opts.workspace, "workspace", "w", "", MsgFlagWorkspace)
	flags.StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	flags.StringVarP(&opts.format, "format", "f", "auto", MsgFlagFormat)
	flags.StringArrayVar(&opts.overrides, "set", nil, MsgFlagSet)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return ui.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newReconcileCmd(opts))
	rootCmd.AddCommand(newFixupCmd(opts))
	rootCmd.AddCommand(newManifestCmd(opts))
	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newManCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd(opts))

	tm, err := topics.InitializeWithOptions(rootCmd, topicFiles, "topics", topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(!stdoutIsTerminal()),
	})
	if err == nil {
		rootCmd.AddCommand(newDocsCmd(tm))
	}

	return rootCmd
}

// loadConfig loads the configuration selected by the global flags
func (o *globalOptions) loadConfig() (*config.Config, error) {
	overrides, err := parseOverrides(o.overrides)
	if err != nil {
		return nil, err
	}
	return config.Load(config.LoadOptions{
		Workspace:  o.workspace,
		ConfigFile: o.configFile,
		Overrides:  overrides,
	})
}

// renderer returns the renderer for --format writing to w
func (o *globalOptions) renderer(w io.Writer) (ui.Renderer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, w)
}

// parseOverrides turns repeated key=value flags into dotted config keys
func parseOverrides(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid --set value %q, expected key=value", pair)
		}
		overrides[key] = value
	}
	return overrides, nil
}

// RenderError writes err to the command's error stream in the format
// selected on the command line. It falls back to plain text when the
// format flag itself is invalid.
func RenderError(cmd *cobra.Command, err error) {
	format, ferr := ui.ParseFormat(formatFlag(cmd))
	if ferr != nil {
		format = ui.FormatText
	}
	renderer, rerr := ui.NewRenderer(format, cmd.ErrOrStderr())
	if rerr != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	_ = renderer.RenderError(err)
}

func formatFlag(cmd *cobra.Command) string {
	if f := cmd.Root().PersistentFlags().Lookup("format"); f != nil {
		return f.Value.String()
	}
	return ""
}
