// ABOUTME: Build identity constants for the chrono widgets
// ABOUTME: Reported in mDNS TXT records and --version output
package version

const (
	// Product is the human-readable product name.
	Product = "Chrono Clock"

	// Version is the semantic version of this build.
	Version = "0.3.0"

	// Manufacturer identifies the project publishing this build.
	Manufacturer = "chronosync"
)
