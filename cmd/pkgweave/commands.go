package pkgweave

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/pkgweave/internal/version"
	"github.com/arthur-debert/pkgweave/pkg/build"
	"github.com/arthur-debert/pkgweave/pkg/cobrax/topics"
	"github.com/arthur-debert/pkgweave/pkg/config"
	"github.com/arthur-debert/pkgweave/pkg/entrypoints"
	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/filesystem"
	"github.com/arthur-debert/pkgweave/pkg/fixup"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/arthur-debert/pkgweave/pkg/metadata"
	"github.com/arthur-debert/pkgweave/pkg/reconcile"
	"github.com/arthur-debert/pkgweave/pkg/synthfs"
	"github.com/arthur-debert/pkgweave/pkg/transpiler"
	"github.com/arthur-debert/pkgweave/pkg/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newBuildCmd(opts *globalOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "build",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.build")

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			buildOpts, err := build.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			fsys := filesystem.NewOS(cfg.Workspace)
			logger.Info().
				Str("workspace", cfg.Workspace).
				Str("output", cfg.OutputDirectory).
				Bool("dryRun", dryRun).
				Msg("Starting build")

			if dryRun {
				preview, err := build.New(fsys, cfg.Workspace, nil, nil).Preview(buildOpts)
				if err != nil {
					return err
				}
				return renderer.RenderResult(preview)
			}

			if len(cfg.Transpiler.Command) == 0 {
				return errors.New(errors.ErrConfiguration, "transpiler.command is not configured")
			}
			tr := transpiler.NewCommand(cfg.Transpiler.Command, cfg.Transpiler.Env)
			tr.Output = cmd.ErrOrStderr()

			builder := build.New(fsys, cfg.Workspace, tr, synthfs.NewSynthfsExecutor(cfg.Workspace, false))
			result, err := builder.Run(cmd.Context(), buildOpts)
			if err != nil {
				return err
			}
			return renderer.RenderResult(result)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func newReconcileCmd(opts *globalOptions) *cobra.Command {
	var secondary string

	cmd := &cobra.Command{
		Use:     "reconcile [dir]",
		Short:   MsgReconcileShort,
		Long:    MsgReconcileLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if secondary == "" {
				secondary = cfg.Reconcile.SecondaryDirectory
			}

			fsys := filesystem.NewOS(cfg.Workspace)
			report, err := reconcile.New(fsys, targetDir(cfg, args), secondary).Reconcile()
			if err != nil {
				return err
			}
			return renderer.RenderResult(report)
		},
	}

	cmd.Flags().StringVar(&secondary, "secondary", "", MsgFlagSecondary)
	return cmd
}

func newFixupCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "fixup [dir]",
		Short:   MsgFixupShort,
		Long:    MsgFixupLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			fsys := filesystem.NewOS(cfg.Workspace)
			report, err := fixup.FixTree(cmd.Context(), fsys, targetDir(cfg, args), fixup.Options{
				Concurrency: cfg.Fixup.Concurrency,
				Skip:        cfg.Fixup.Skip,
			})
			if err != nil {
				return err
			}
			return renderer.RenderResult(report)
		},
	}
}

func newManifestCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "manifest",
		Short:   MsgManifestShort,
		Long:    MsgManifestLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			resolution, err := entrypoints.Resolve(cfg.Declarations(), cfg.GenerateDeclaration)
			if err != nil {
				return err
			}
			fragment, err := metadata.FragmentFromResolution(resolution, cfg.GenerateDeclaration,
				metadata.WithLeadingExports(cfg.Manifest.LeadingExports...))
			if err != nil {
				return err
			}

			path := filepath.Join(filepath.Clean(cfg.OutputDirectory), build.ManifestFile)
			fsys := filesystem.NewOS(cfg.Workspace)
			if err := metadata.RefactorManifest(fsys, path, fragment, cfg.Manifest.KeyOrder); err != nil {
				return err
			}
			return renderer.RenderMessage(fmt.Sprintf(MsgManifestUpdated, filepath.ToSlash(path)))
		},
	}
}

func newInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "init",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			workspace := opts.workspace
			if workspace == "" {
				workspace = "."
			}
			path, err := config.WriteStarter(workspace, force)
			if err != nil {
				return err
			}
			return renderer.RenderMessage(fmt.Sprintf(MsgConfigWritten, path))
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func newDocsCmd(tm *topics.TopicManager) *cobra.Command {
	return &cobra.Command{
		Use:     "docs [topic]",
		Short:   MsgDocsShort,
		Long:    MsgDocsLong,
		GroupID: "misc",
		Args:    cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return tm.ListTopics(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				tm.PrintTopicList(cmd.OutOrStdout(), cmd.Root().Name())
				return nil
			}
			topic, ok := tm.GetTopic(args[0])
			if !ok {
				return errors.Newf(errors.ErrNotFound, "no such topic %q", args[0]).
					WithDetail("available", tm.ListTopics())
			}
			return tm.Render(cmd.OutOrStdout(), topic)
		},
	}
}

// ManHeader is the header used for generated man pages
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "PKGWEAVE",
		Section: "1",
		Source:  "pkgweave " + version.Version,
		Manual:  "pkgweave manual",
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man [dir]",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return doc.GenMan(cmd.Root(), ManHeader(), cmd.OutOrStdout())
			}
			if err := os.MkdirAll(args[0], 0755); err != nil {
				return errors.Wrapf(err, errors.ErrFilesystem, "failed to create %s", args[0])
			}
			if err := doc.GenManTree(cmd.Root(), ManHeader(), args[0]); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to generate man pages")
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten+"\n", args[0])
			return err
		},
	}
}

// GenerateCompletion writes the completion script for shell to the root
// command's output stream
func GenerateCompletion(root *cobra.Command, shell string) error {
	out := root.OutOrStdout()
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(out, true)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(out)
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown shell %q", shell).
			WithDetail("supported", []string{"bash", "zsh", "fish", "powershell"})
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return GenerateCompletion(cmd.Root(), args[0])
		},
	}
}

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			format, err := ui.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			if format == ui.FormatJSON {
				renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				return renderer.RenderResult(info)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "pkgweave version %s\n  commit: %s\n  built:  %s\n",
				info.Version, info.Commit, info.Date)
			return err
		},
	}
}

// targetDir is the directory argument, or the configured output directory
func targetDir(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return filepath.Clean(args[0])
	}
	return filepath.Clean(cfg.OutputDirectory)
}
