package pkgweave

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Finish transpiled npm packages"
	MsgBuildShort      = "Run the transpiler and post-process its output"
	MsgReconcileShort  = "Merge the secondary module tree into the output root"
	MsgFixupShort      = "Restore shebangs above injected imports"
	MsgManifestShort   = "Rewrite package.json entry point keys"
	MsgInitShort       = "Write a starter pkgweave.toml"
	MsgDocsShort       = "Read the bundled guides"
	MsgDocsLong        = "Docs renders the bundled guides. Without arguments it lists them."
	MsgManShort        = "Generate man pages"
	MsgCompletionShort = "Generate shell completion script"
	MsgVersionShort    = "Print version information"

	// Status messages
	MsgManifestUpdated = "Updated %s"
	MsgConfigWritten   = "Wrote %s"
	MsgManWritten      = "Wrote man pages to %s"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagWorkspace = "Workspace directory (default is the current directory)"
	MsgFlagConfig    = "Additional config file, applied after the workspace one"
	MsgFlagFormat    = "Output format: auto, term, text or json"
	MsgFlagSet       = "Override a config key (key=value, repeatable)"
	MsgFlagDryRun    = "Print the transform plan without writing anything"
	MsgFlagForce     = "Replace an existing config file"
	MsgFlagSecondary = "Secondary directory to merge (default from config)"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/reconcile-long.txt
	msgReconcileLongRaw string
	MsgReconcileLong    = strings.TrimSpace(msgReconcileLongRaw)

	//go:embed msgs/fixup-long.txt
	msgFixupLongRaw string
	MsgFixupLong    = strings.TrimSpace(msgFixupLongRaw)

	//go:embed msgs/manifest-long.txt
	msgManifestLongRaw string
	MsgManifestLong    = strings.TrimSpace(msgManifestLongRaw)

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
