// Package version holds the release version shared by the binaries.
package version

// Version is the release version, reported to MCP peers and by --version.
var Version = "0.1.0"
