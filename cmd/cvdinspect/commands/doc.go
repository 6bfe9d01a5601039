// Package commands defines the cvdinspect CLI.
//
// Commands
//
//   - analyze    Simulate deficiencies and check palette contrast
//   - palette    Extract dominant colors and print the contrast matrix
//   - simulate   Render one deficiency simulation to a PNG
//   - version    Print build information
//
// The root command loads configuration (file, then environment) and builds
// the dependency container before any subcommand runs. Sources may be local
// paths, http(s) URLs or Azure blob URLs.
package commands
