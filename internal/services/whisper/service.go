package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"radioscribe/internal/config"
	"radioscribe/internal/services"
)

const component = "whisper"

// CommandRunner executes the transcription binary. Tests inject a stub
// that writes fixture output instead of invoking a model.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// Segment is one timed span of recognized speech.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Result is the outcome of one transcription run. OutputFiles maps each
// produced format to its path on disk.
type Result struct {
	Text        string
	Segments    []Segment
	WordCount   int
	Speakers    []string
	OutputFiles map[string]string
}

// Service runs the whisper command line tool and post-processes its
// JSON output into the configured artifact formats.
type Service struct {
	binary   string
	model    string
	language string
	formats  []string
	diarize  bool
	runner   CommandRunner
}

// New builds a transcription service from configuration.
func New(cfg config.Transcription) *Service {
	return &Service{
		binary:   cfg.Binary,
		model:    cfg.Model,
		language: cfg.Language,
		formats:  append([]string(nil), cfg.Formats...),
		diarize:  cfg.Diarize,
		runner:   runCommand,
	}
}

// WithRunner replaces the command runner. Intended for tests.
func (s *Service) WithRunner(runner CommandRunner) *Service {
	s.runner = runner
	return s
}

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Transcribe runs the model over audioPath and writes one artifact per
// configured format into outputDir. The tool always emits JSON; txt and
// srt are rendered from the parsed segments so their content stays
// consistent with the JSON artifact.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir string) (*Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "transcribe", fmt.Sprintf("audio file not found: %s", audioPath), err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "transcribe", "create output directory", err)
	}

	args := []string{
		audioPath,
		"--model", s.model,
		"--output_dir", outputDir,
		"--output_format", "json",
	}
	if s.language != "" {
		args = append(args, "--language", s.language)
	}
	if s.diarize {
		args = append(args, "--diarize")
	}
	if _, stderr, err := s.runner(ctx, s.binary, args...); err != nil {
		msg := "command failed"
		if trimmed := strings.TrimSpace(stderr); trimmed != "" {
			msg = trimmed
		}
		return nil, services.Wrap(services.ErrExternalTool, component, "transcribe", msg, err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, base+".json")
	result, err := loadModelOutput(jsonPath)
	if err != nil {
		return nil, err
	}

	result.OutputFiles = make(map[string]string, len(s.formats))
	for _, format := range s.formats {
		path := filepath.Join(outputDir, base+"."+format)
		switch format {
		case "json":
			result.OutputFiles[format] = jsonPath
		case "txt":
			if err := os.WriteFile(path, []byte(result.Text+"\n"), 0o644); err != nil {
				return nil, services.Wrap(services.ErrConfiguration, component, "transcribe", "write txt artifact", err)
			}
			result.OutputFiles[format] = path
		case "srt":
			if err := os.WriteFile(path, []byte(renderSRT(result.Segments)), 0o644); err != nil {
				return nil, services.Wrap(services.ErrConfiguration, component, "transcribe", "write srt artifact", err)
			}
			result.OutputFiles[format] = path
		default:
			return nil, services.Wrap(services.ErrConfiguration, component, "transcribe", fmt.Sprintf("unknown output format %q", format), nil)
		}
	}
	return result, nil
}

// modelOutput matches the JSON document the tool writes.
type modelOutput struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

func loadModelOutput(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, component, "transcribe", "model produced no JSON output", err)
	}
	var output modelOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, component, "transcribe", "malformed JSON output", err)
	}

	text := strings.TrimSpace(output.Text)
	if text == "" {
		parts := make([]string, 0, len(output.Segments))
		for _, segment := range output.Segments {
			if trimmed := strings.TrimSpace(segment.Text); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		text = strings.Join(parts, " ")
	}

	result := &Result{
		Text:      text,
		Segments:  output.Segments,
		WordCount: len(strings.Fields(text)),
		Speakers:  collectSpeakers(output.Segments),
	}
	return result, nil
}

func collectSpeakers(segments []Segment) []string {
	seen := make(map[string]struct{})
	var speakers []string
	for _, segment := range segments {
		if segment.Speaker == "" {
			continue
		}
		if _, ok := seen[segment.Speaker]; ok {
			continue
		}
		seen[segment.Speaker] = struct{}{}
		speakers = append(speakers, segment.Speaker)
	}
	return speakers
}

// renderSRT produces a SubRip document from timed segments.
func renderSRT(segments []Segment) string {
	var builder strings.Builder
	index := 1
	for _, segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		if segment.Speaker != "" {
			text = segment.Speaker + ": " + text
		}
		fmt.Fprintf(&builder, "%d\n%s --> %s\n%s\n\n", index, srtTimestamp(segment.Start), srtTimestamp(segment.End), text)
		index++
	}
	return builder.String()
}

func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3600000
	m := (millis % 3600000) / 60000
	s := (millis % 60000) / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
