package version

import "github.com/fatih/color"

// Version information for the aotjs CLI.
// GitCommit, GitMessage and BuildDate can be overridden at build time via
// -ldflags -X. Version is built by function calls at package init, so an
// -X value for it is overwritten when the package initializes.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI. 0.4 tracks the engine's
	// GC/closure/snapshot surface landing together; bump the minor digit
	// again once the wire format for generated code is settled.
	Version = versionMajorColor.Sprint("0") + "." + versionMinorColor.Sprint("4") + "." + versionPatchColor.Sprint("0") + "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)
