// Package http is the network transport behind the request object.
//
// It wraps the standard library's http package with:
//   - Redirect following under a bounded budget (see package redirect)
//   - TLS material loaded from PEM files
//   - One retry when a reused pooled connection is reset by the peer
//   - Optional dropping of idle connections after each request
//   - Streaming and buffered response bodies
package http
