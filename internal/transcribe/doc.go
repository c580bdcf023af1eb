// Package transcribe drains ready shows through the speech-to-text
// service and records the resulting artifacts, one show at a time.
package transcribe
