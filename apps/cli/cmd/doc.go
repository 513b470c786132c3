// Package cmd implements the xhrkit CLI commands using Cobra.
//
// Available commands:
//   - fetch: Issue a request through the XMLHttpRequest implementation
//   - init: Write a starter configuration file
//   - validate: Check configuration files without sending anything
//   - version: Show xhrkit version information
//
// Configuration is layered: defaults, a config file, XHRKIT_* environment
// variables, then command line flags.
package cmd
