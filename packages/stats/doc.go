// Package stats summarizes repeated requests issued by the CLI.
//
// A Recorder collects per-request latency in an HDR histogram together with
// status and error counts; a Pacer spaces requests to a target rate.
package stats
