// Package policy holds the request safety rules applied before a request
// leaves the client.
//
// It provides:
//   - The forbidden request header deny-list
//   - The forbidden request method set (TRACE, TRACK, CONNECT)
//   - Header name/value token validation
package policy
