package version

import (
	"fmt"
)

// Version may be overridden at build time with
// -ldflags "-X github.com/benoitkugler/boxlayout/version.Version=..."
var Version = "0.1.0"

// VersionString is printed by the command line tool.
var VersionString = fmt.Sprintf("Go-BoxLayout %s", Version)
