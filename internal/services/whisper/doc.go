// Package whisper runs the whisper speech-to-text tool and turns its
// JSON output into the configured transcript artifacts (plain text, JSON,
// SubRip). Diarized speaker labels are carried through when present.
package whisper
