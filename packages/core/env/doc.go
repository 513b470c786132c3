// Package env loads .env files and expands {{variable}} placeholders in
// request URLs, header values and bodies.
//
// Lookup order for a placeholder is: explicitly set variables, values read
// from .env files, then the process environment. {{$NAME}} always reads the
// process environment.
package env
