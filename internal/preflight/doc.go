// Package preflight validates the environment before the pipeline starts:
// working directories must be writable and the external tools present.
package preflight
