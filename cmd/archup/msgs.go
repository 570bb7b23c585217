package archup

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Provision an Arch Linux workstation"
	MsgSetupShort     = "Run the setup pipeline on an installed system"
	MsgBootstrapShort = "Stage the installer and hand off to it"
	MsgDetectShort    = "Report what archup sees on this host"
	MsgStepsShort     = "List the setup steps in order"
	MsgPlanShort      = "Describe what a setup run would do"
	MsgConfigShort    = "Print the effective configuration"
	MsgVersionShort   = "Print version information"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun   = "Log commands instead of running them and leave files untouched"
	MsgFlagConfig   = "Read configuration from this file instead of the default location"
	MsgFlagYes      = "Answer yes to every confirmation prompt"
	MsgFlagFormat   = "Output format: auto, term, text or json"
	MsgFlagTemplate = "Print a commented template instead of the effective values"
	MsgFlagSet      = "Override a configuration value, e.g. --set shell.name=fish (repeatable)"

	// Status messages
	MsgVersionFormat   = "archup %s (commit %s, built %s)\n"
	MsgConfigSource    = "# loaded from %s\n"
	MsgConfigNoSource  = "# no user config file, showing defaults and environment overrides\n"
	MsgDryRunNotice    = "DRY RUN MODE - commands are logged, nothing is changed"
	MsgBootstrapDryRun = "Artifacts downloaded but not written; no handoff in dry run mode"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/setup-long.txt
	msgSetupLongRaw string
	MsgSetupLong    = strings.TrimSpace(msgSetupLongRaw)

	//go:embed msgs/bootstrap-long.txt
	msgBootstrapLongRaw string
	MsgBootstrapLong    = strings.TrimSpace(msgBootstrapLongRaw)

	//go:embed msgs/detect-long.txt
	msgDetectLongRaw string
	MsgDetectLong    = strings.TrimSpace(msgDetectLongRaw)

	//go:embed msgs/config-example.txt
	msgConfigExampleRaw string
	MsgConfigExample    = strings.TrimSpace(msgConfigExampleRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
