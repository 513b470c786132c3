// Package output renders request outcomes for the CLI.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Select narrows a JSON body with a gjson path and ValidateSchema checks a
// body against a JSON schema file.
package output
