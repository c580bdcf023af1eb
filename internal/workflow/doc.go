// Package workflow coordinates the pipeline lanes over the shared
// catalog. There is no in-process queue: each lane claims work through
// the catalog's conditional status updates, so any number of processes
// can share one database without double-processing.
package workflow
