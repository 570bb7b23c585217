package types

import "sort"

// Firmware is the boot firmware interface of the host
type Firmware string

const (
	FirmwareUEFI Firmware = "uefi"
	FirmwareBIOS Firmware = "bios"
)

// EnvironmentContext is computed once before any flow starts and is
// read-only afterwards.
type EnvironmentContext struct {
	IsPrivileged         bool
	IsLiveMedium         bool
	TargetDistroDetected bool
	RequiredToolsPresent map[string]bool
	NetworkReachable     bool
	// NetworkProbed is false when the probe was skipped, which happens when
	// a required tool is missing.
	NetworkProbed bool
	Firmware      Firmware
}

// MissingTools returns the absent required tools in name order
func (e EnvironmentContext) MissingTools() []string {
	var missing []string
	for tool, present := range e.RequiredToolsPresent {
		if !present {
			missing = append(missing, tool)
		}
	}
	sort.Strings(missing)
	return missing
}
