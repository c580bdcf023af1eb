package getiplayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"radioscribe/internal/config"
	"radioscribe/internal/services"
)

const component = "get_iplayer"

var savedToPattern = regexp.MustCompile(`INFO: File\(s\) saved to (.+)`)

// CommandRunner executes an external command and returns its separated
// stdout and stderr. Tests inject a stub; production uses runCommand.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// Client wraps the get_iplayer command line tool.
type Client struct {
	binary        string
	programmeType string
	extraArgs     []string
	timeout       time.Duration
	runner        CommandRunner
}

// New builds a client from fetch configuration.
func New(cfg config.Fetch) *Client {
	return &Client{
		binary:        cfg.Binary,
		programmeType: cfg.ProgrammeType,
		extraArgs:     append([]string(nil), cfg.ExtraArgs...),
		timeout:       time.Duration(cfg.CommandTimeout) * time.Second,
		runner:        runCommand,
	}
}

// WithRunner replaces the command runner. Intended for tests.
func (c *Client) WithRunner(runner CommandRunner) *Client {
	c.runner = runner
	return c
}

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (c *Client) run(ctx context.Context, operation string, args ...string) (string, string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	full := append([]string{"--type", c.programmeType}, c.extraArgs...)
	full = append(full, args...)
	stdout, stderr, err := c.runner(ctx, c.binary, full...)
	if err != nil {
		return stdout, stderr, services.Wrap(services.ErrExternalTool, component, operation, "command failed", err)
	}
	return stdout, stderr, nil
}

// SearchOptions narrows a catalog search to one channel or category.
type SearchOptions struct {
	Channel  string
	Category string
}

// Search queries the local programme cache and returns matching catalog
// entries. The tool emits one JSON object per line; malformed lines are
// skipped rather than failing the whole sweep.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]RawCatalogEntry, error) {
	args := []string{query, "--fields", "name,episode"}
	if opts.Channel != "" {
		args = append(args, "--channel", opts.Channel)
	}
	if opts.Category != "" {
		args = append(args, "--category", opts.Category)
	}
	args = append(args, "--listformat", searchListFormat)
	stdout, stderr, err := c.run(ctx, "search", args...)
	if err != nil {
		return nil, err
	}
	if strings.Contains(stderr, "ERROR") {
		return nil, services.Wrap(services.ErrExternalTool, component, "search", strings.TrimSpace(stderr), nil)
	}
	return parseEntries(stdout), nil
}

// searchListFormat renders each hit as a single JSON object so the output
// survives titles containing the tool's default field separators.
const searchListFormat = `{"pid":"<pid>","name":"<name>","desc":"<desc>","episode":"<episode>","firstbcast":"<firstbcast>","duration":"<duration>","channel":"<channel>","categories":"<categories>","thumbnail":"<thumbnail>","web":"<web>"}`

func parseEntries(output string) []RawCatalogEntry {
	var entries []RawCatalogEntry
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		var entry RawCatalogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.PID == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// ShowInfo fetches full metadata for a single programme by PID.
func (c *Client) ShowInfo(ctx context.Context, pid string) (RawCatalogEntry, error) {
	if strings.TrimSpace(pid) == "" {
		return RawCatalogEntry{}, services.Wrap(services.ErrValidation, component, "info", "pid is required", nil)
	}
	stdout, stderr, err := c.run(ctx, "info", "--info", "--pid", pid)
	if err != nil {
		return RawCatalogEntry{}, err
	}
	if strings.Contains(stderr, "ERROR") {
		return RawCatalogEntry{}, services.Wrap(services.ErrExternalTool, component, "info", strings.TrimSpace(stderr), nil)
	}
	entry := parseInfoOutput(stdout)
	if entry.PID == "" {
		entry.PID = pid
	}
	return entry, nil
}

// parseInfoOutput reads the "key: value" blocks that --info prints.
func parseInfoOutput(output string) RawCatalogEntry {
	var entry RawCatalogEntry
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "pid":
			entry.PID = value
		case "name":
			entry.Name = value
		case "desc", "descshort":
			if entry.Desc == "" {
				entry.Desc = value
			}
		case "episode":
			entry.Episode = value
		case "firstbcast":
			entry.FirstBroadcast = value
		case "duration":
			entry.Duration = looseString(value)
		case "channel":
			entry.Channel = value
		case "categories":
			entry.Categories = value
		case "thumbnail":
			entry.Thumbnail = value
		case "guidance":
			entry.Guidance = value
		case "web":
			entry.Web = value
		}
	}
	return entry
}

// Download fetches a programme's audio into outputDir. Success means the
// tool exited cleanly; OutputPath is set only when the tool reported where
// the file landed. A clean exit without a reported path is still a
// success — the caller resolves the file from the output directory later.
func (c *Client) Download(ctx context.Context, pid, outputDir string) (FetchResult, error) {
	if strings.TrimSpace(pid) == "" {
		return FetchResult{}, services.Wrap(services.ErrValidation, component, "download", "pid is required", nil)
	}
	args := []string{
		"--pid", pid,
		"--output", outputDir,
		"--file-prefix", "<name>_<pid>",
	}
	stdout, stderr, err := c.run(ctx, "download", args...)
	result := FetchResult{PID: pid, Stdout: stdout, Stderr: stderr}
	if err != nil {
		return result, err
	}
	if strings.Contains(stderr, "ERROR") {
		return result, services.Wrap(services.ErrExternalTool, component, "download", strings.TrimSpace(stderr), nil)
	}
	result.Success = true
	if match := savedToPattern.FindStringSubmatch(stdout); match != nil {
		result.OutputPath = strings.TrimSpace(match[1])
	}
	return result, nil
}

// RefreshCache asks the tool to re-download its programme index.
func (c *Client) RefreshCache(ctx context.Context) error {
	_, stderr, err := c.run(ctx, "refresh", "--refresh")
	if err != nil {
		return err
	}
	if strings.Contains(stderr, "ERROR") {
		return services.Wrap(services.ErrExternalTool, component, "refresh", strings.TrimSpace(stderr), nil)
	}
	return nil
}

// ListChannels returns the channel names known to the local cache.
func (c *Client) ListChannels(ctx context.Context) ([]string, error) {
	return c.list(ctx, "channels", "--list", "channel")
}

// ListCategories returns the category names known to the local cache.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	return c.list(ctx, "categories", "--list", "categories")
}

func (c *Client) list(ctx context.Context, operation string, args ...string) ([]string, error) {
	stdout, _, err := c.run(ctx, operation, args...)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "INFO:") || strings.HasPrefix(line, "Matches:") {
			continue
		}
		// Listing lines look like "BBC Radio 4 (812)".
		if idx := strings.LastIndex(line, " ("); idx > 0 && strings.HasSuffix(line, ")") {
			line = line[:idx]
		}
		names = append(names, line)
	}
	return names, nil
}

// Version reports the tool's version string, used by preflight checks.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, _, err := c.runner(ctx, c.binary, "--version")
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, component, "version", "command failed", err)
	}
	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
	}
	return "", fmt.Errorf("%s: empty version output", component)
}
