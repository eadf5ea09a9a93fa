package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ParameterType selects the SSM parameter type.
type ParameterType int

const (
	ParamSecureString ParameterType = iota
	ParamString
)

// BootstrapStep is one parameter collected from the operator.
type BootstrapStep struct {
	HumanLabel string
	// SSMKey is the path below /{env}/smokebuddy/.
	SSMKey string
	// EnvVar is the configuration variable the parameter feeds. The deployed
	// binaries reference it as EnvVar+"_SSM_PARAM".
	EnvVar     string
	ParamType  ParameterType
	Prompt     string
	ValidateFn func(ctx context.Context, input string) ValidationResult
	// IsSecret masks the input on a terminal.
	IsSecret bool
	// Optional steps are skipped on empty input or with --skip-optional.
	Optional bool
}

// maxRetries is how often an invalid value may be re-entered.
const maxRetries = 5

var errSkipped = errors.New("parameter skipped by operator")

// BuildInventory returns the ordered list of parameters.
func BuildInventory(v *Validator) []BootstrapStep {
	return []BootstrapStep{
		{
			HumanLabel: "LINE Channel Access Token",
			SSMKey:     "line/channel_access_token",
			EnvVar:     "LINE_CHANNEL_ACCESS_TOKEN",
			ParamType:  ParamSecureString,
			Prompt: `1. Open the LINE Developers Console and select the Messaging API channel.
   2. Under "Messaging API", issue a long-lived channel access token.
   3. Paste it here:`,
			ValidateFn: v.ValidateLineToken,
			IsSecret:   true,
		},
		{
			HumanLabel: "LINE Push Target (optional)",
			SSMKey:     "line/push_to",
			EnvVar:     "LINE_PUSH_TO",
			ParamType:  ParamString,
			Prompt: `The user, group or room that receives the daily summary and weather report.
   Paste the ID (U.../C.../R...) or press Enter to skip:`,
			ValidateFn: v.ValidatePushTarget,
			Optional:   true,
		},
		{
			HumanLabel: "Database URL (optional)",
			SSMKey:     "database/url",
			EnvVar:     "DATABASE_URL",
			ParamType:  ParamSecureString,
			Prompt: `Only needed with STATE_BACKEND=postgres.
   Paste the postgres://... connection string or press Enter to skip:`,
			ValidateFn: v.ValidateDatabaseURL,
			IsSecret:   true,
			Optional:   true,
		},
	}
}

// BootstrapRunner drives the interactive loop.
type BootstrapRunner struct {
	SSM          *SSMManager
	Validator    *Validator
	Stdin        io.Reader
	Stderr       io.Writer
	SkipOptional bool

	// scanner is shared so buffered input is not lost between prompts.
	scanner *bufio.Scanner

	inventoryOverride []BootstrapStep
}

// NewBootstrapRunner creates a runner with production dependencies.
func NewBootstrapRunner(bctx *BootstrapContext) *BootstrapRunner {
	return &BootstrapRunner{
		SSM:       NewSSMManager(bctx),
		Validator: NewValidator(),
		Stdin:     os.Stdin,
		Stderr:    os.Stderr,
	}
}

func (r *BootstrapRunner) inventory() []BootstrapStep {
	if r.inventoryOverride != nil {
		return r.inventoryOverride
	}
	return BuildInventory(r.Validator)
}

type stepResult struct {
	Label  string
	Action string // written, overwritten, skipped
	Path   string
	EnvVar string
}

// Run processes every step in order and prints a summary.
func (r *BootstrapRunner) Run(ctx context.Context) error {
	inventory := r.inventory()
	results := make([]stepResult, 0, len(inventory))

	for i, step := range inventory {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(r.Stderr, "\n[%d/%d] %s\n", i+1, len(inventory), step.HumanLabel)

		result, err := r.processStep(ctx, step)
		if err != nil {
			return fmt.Errorf("step %q failed: %w", step.HumanLabel, err)
		}
		results = append(results, result)
	}

	r.printSummary(results)
	return nil
}

func (r *BootstrapRunner) processStep(ctx context.Context, step BootstrapStep) (stepResult, error) {
	path := r.SSM.SSMPath(step.SSMKey)
	result := stepResult{Label: step.HumanLabel, Path: path, EnvVar: step.EnvVar}

	if step.Optional && r.SkipOptional {
		fmt.Fprintf(r.Stderr, "  Skipped (--skip-optional)\n")
		result.Action = "skipped"
		return result, nil
	}

	exists, err := r.SSM.ParameterExists(ctx, path)
	if err != nil {
		return result, err
	}
	if exists {
		fmt.Fprintf(r.Stderr, "  Parameter already exists: %s\n", path)
		overwrite, err := r.promptChoice("  [S]kip or [O]verwrite? ", "o", "s")
		if err != nil {
			return result, fmt.Errorf("reading skip/overwrite choice: %w", err)
		}
		if !overwrite {
			fmt.Fprintf(r.Stderr, "  Kept existing value.\n")
			result.Action = "skipped"
			return result, nil
		}
	}

	value, err := r.promptAndValidate(ctx, step)
	if errors.Is(err, errSkipped) {
		fmt.Fprintf(r.Stderr, "  Skipped.\n")
		result.Action = "skipped"
		return result, nil
	}
	if err != nil {
		return result, err
	}

	if step.ParamType == ParamSecureString {
		err = r.SSM.PutSecret(ctx, path, value, exists)
	} else {
		err = r.SSM.PutString(ctx, path, value)
	}
	if err != nil {
		return result, err
	}

	result.Action = "written"
	if exists {
		result.Action = "overwritten"
	}
	fmt.Fprintf(r.Stderr, "  Stored: %s\n", path)
	return result, nil
}

// promptAndValidate asks for a value until it validates or maxRetries
// validation failures have been seen. Empty input skips an optional step and
// offers a skip for a required one.
func (r *BootstrapRunner) promptAndValidate(ctx context.Context, step BootstrapStep) (string, error) {
	fmt.Fprintf(r.Stderr, "\n  %s\n\n", step.Prompt)

	read := r.readInput
	if step.IsSecret {
		read = r.readSecretInput
	}

	failures := 0
	for failures < maxRetries {
		raw, err := read("  > ")
		if err != nil {
			return "", fmt.Errorf("read %s: %w", step.HumanLabel, err)
		}
		input := strings.TrimSpace(raw)

		if input == "" {
			if step.Optional {
				return "", errSkipped
			}
			retry, err := r.promptChoice("  Nothing entered. [S]kip or [R]etry? ", "r", "s")
			if err != nil {
				return "", err
			}
			if !retry {
				return "", errSkipped
			}
			continue
		}
		if step.IsSecret {
			fmt.Fprintf(r.Stderr, "  Got %d characters.\n", len(input))
		}
		if step.ValidateFn == nil {
			return input, nil
		}

		res := step.ValidateFn(ctx, input)
		if res.Valid {
			fmt.Fprintf(r.Stderr, "  OK: %s\n", res.Message)
			return input, nil
		}
		failures++
		fmt.Fprintf(r.Stderr, "  Validation failed: %s\n", res.Message)
		if failures < maxRetries {
			fmt.Fprintf(r.Stderr, "  Attempt %d of %d, try again.\n", failures, maxRetries)
		}
	}
	return "", fmt.Errorf("maximum retries (%d) exceeded for %s", maxRetries, step.HumanLabel)
}

// promptChoice asks until the answer starts with yes or no and reports
// whether it was yes.
func (r *BootstrapRunner) promptChoice(prompt, yes, no string) (bool, error) {
	for {
		line, err := r.readInput(prompt)
		if err != nil {
			return false, err
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		switch {
		case choice != "" && strings.HasPrefix(choice, yes):
			return true, nil
		case choice != "" && strings.HasPrefix(choice, no):
			return false, nil
		}
		fmt.Fprintf(r.Stderr, "  Please enter '%s' or '%s'.\n", strings.ToUpper(yes), strings.ToUpper(no))
	}
}

func (r *BootstrapRunner) scanLine() (string, error) {
	if r.scanner == nil {
		r.scanner = bufio.NewScanner(r.Stdin)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *BootstrapRunner) readInput(prompt string) (string, error) {
	fmt.Fprint(r.Stderr, prompt)
	return r.scanLine()
}

// readSecretInput disables echo when stdin is a terminal and falls back to
// line reading for piped input.
func (r *BootstrapRunner) readSecretInput(prompt string) (string, error) {
	fmt.Fprint(r.Stderr, prompt)

	if f, ok := r.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(r.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading secret input: %w", err)
		}
		return string(secret), nil
	}
	return r.scanLine()
}

func (r *BootstrapRunner) printSummary(results []stepResult) {
	w := r.Stderr
	fmt.Fprintf(w, "\n%s\n  Summary\n%s\n", rule, rule)

	var pointers []string
	for _, res := range results {
		fmt.Fprintf(w, "  %-14s %s\n", "["+strings.ToUpper(res.Action)+"]", res.Label)
		if res.Action != "skipped" {
			pointers = append(pointers, res.EnvVar+"_SSM_PARAM="+res.Path)
		}
	}
	if len(pointers) > 0 {
		fmt.Fprintln(w, "  Set these on the bot and daily-jobs functions:")
		for _, p := range pointers {
			fmt.Fprintf(w, "    %s\n", p)
		}
	}
	fmt.Fprintf(w, "%s\n\n", rule)
}
