// Package syncbridge performs a request to completion on behalf of a caller
// that must block.
//
// ProcessRunner hands the request to a copy of the current executable and
// waits for it to delete a sentinel file; the worker side is Init, which
// every program using synchronous requests calls first thing in main.
// InlineRunner does the same work on a goroutine inside the calling process.
//
// Both runners exchange the outcome through the same result file encoding:
//
//	ERROR:<json {"message", "code"}>
//	ERROR-REDIRECT:<message>
//	<json {"url", "statusCode", "statusText", "headers", "data"}>
package syncbridge
