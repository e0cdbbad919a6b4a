package gfal

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dynamo-fod/fod/internal/classify"
)

// CLIClient drives the gfal2-util command-line tools (gfal-copy, gfal-stat,
// gfal-rm, gfal-legacy-bringonline). This is the production Client: there is
// no maintained cgo-free binding to libgfal2, so the daemon shells out the
// same way the reference implementation's ctypes binding ultimately does,
// one process per attempt.
type CLIClient struct {
	// Bin overrides individual tool names, keyed by logical command
	// ("copy", "stat", "rm", "bringonline"). Missing keys fall back to
	// the tool's default name on PATH.
	Bin map[string]string
}

func (c *CLIClient) bin(name, fallback string) string {
	if c == nil || c.Bin == nil {
		return fallback
	}
	if v, ok := c.Bin[name]; ok && v != "" {
		return v
	}
	return fallback
}

func (c *CLIClient) run(ctx context.Context, name string, args ...string) Result {
	started := time.Now().UTC()
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	finished := time.Now().UTC()

	result := Result{
		StartedAt:  started,
		FinishedAt: finished,
		Log:        out.String(),
	}
	if err == nil {
		result.ExitCode = classify.CodeOK
		return result
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			// Killed by a signal; negative codes are reserved for the
			// worker's cancellation sentinel.
			result.ExitCode = classify.CodeEIO
		}
		result.Message = result.Log
		return result
	}
	// Process never ran (binary missing, context cancelled before start).
	result.ExitCode = classify.CodeEIO
	result.Message = err.Error()
	return result
}

func (c *CLIClient) Copy(ctx context.Context, src, dst string, params CopyParams) Result {
	args := []string{"-p"}
	if params.Overwrite {
		args = append(args, "-f")
	}
	if params.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(params.Timeout))
	}
	if params.ChecksumAlgo != "" {
		if params.Checksum != "" {
			args = append(args, "-K", params.ChecksumAlgo+":"+params.Checksum)
		} else {
			args = append(args, "-K", params.ChecksumAlgo)
		}
	}
	args = append(args, src, dst)
	return c.run(ctx, c.bin("copy", "gfal-copy"), args...)
}

func (c *CLIClient) Stat(ctx context.Context, url string) Result {
	return c.run(ctx, c.bin("stat", "gfal-stat"), url)
}

func (c *CLIClient) Unlink(ctx context.Context, url string) Result {
	return c.run(ctx, c.bin("rm", "gfal-rm"), url)
}

func (c *CLIClient) BringOnline(ctx context.Context, urls []string, pin, timeout int) BringOnlineResult {
	args := append([]string{"-p", strconv.Itoa(pin), "-t", strconv.Itoa(timeout)}, urls...)
	result := c.run(ctx, c.bin("bringonline", "gfal-legacy-bringonline"), args...)

	perFileErrors := make(map[string]string)
	if result.ExitCode != 0 {
		// The CLI reports a batch-level failure without attributing it to
		// a specific PFN; treat every requested file as failed.
		for _, url := range urls {
			perFileErrors[url] = result.Message
		}
	}
	return BringOnlineResult{Result: result, Token: batchToken(result), PerFileErrors: perFileErrors}
}

func (c *CLIClient) BringOnlinePoll(ctx context.Context, url, token string, pin, timeout int) Result {
	return c.run(ctx, c.bin("bringonline", "gfal-legacy-bringonline"),
		"-p", strconv.Itoa(pin), "-t", strconv.Itoa(timeout), "--token", token, "--poll", url)
}

// batchToken derives the bring_online request handle. gfal-legacy-
// bringonline prints its request token to stdout; a real deployment parses
// it out of the captured log. Nothing here should treat an empty token as
// an error: spec.md §7 requires the batch's stage_token to be written even
// when null, so the scheduler never re-issues bring_online for the batch.
func batchToken(result Result) string {
	return strings.TrimSpace(result.Log)
}
