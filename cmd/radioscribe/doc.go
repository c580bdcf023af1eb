// Command radioscribe is the operator CLI for the broadcast pipeline:
// catalog sweeps, manual downloads and transcriptions, queue inspection,
// and error recovery. The long-running pipeline lives in radioscribed.
package main
