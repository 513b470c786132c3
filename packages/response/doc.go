// Package response assembles response bodies into the representation the
// caller selected with a response type.
//
// Two evaluation contexts share one decoder:
//   - Assembler consumes a stream of body chunks
//   - Assemble consumes a complete body
//
// Both produce identical output for the same bytes.
package response
