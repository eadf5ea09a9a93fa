package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// ValidationResult is the outcome of validating one input.
type ValidationResult struct {
	Valid   bool
	Message string
}

// HTTPClient is used by validators that probe a live API.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DatabaseConnector opens and immediately closes a connection to dsn.
type DatabaseConnector interface {
	Connect(ctx context.Context, dsn string) error
}

// PgxConnector verifies a DSN with a real pgx connection.
type PgxConnector struct{}

// Connect dials dsn and closes the connection again.
func (c *PgxConnector) Connect(ctx context.Context, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	return conn.Close(ctx)
}

// Validator holds the dependencies of the active validators.
type Validator struct {
	httpClient HTTPClient
	dbConn     DatabaseConnector
	lineAPI    string
}

// NewValidator creates a Validator with a 10s HTTP client and pgx.
func NewValidator() *Validator {
	return &Validator{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dbConn:     &PgxConnector{},
		lineAPI:    "https://api.line.me",
	}
}

// NewValidatorWithDeps creates a Validator with injected dependencies.
// lineAPI is the LINE API base URL.
func NewValidatorWithDeps(httpClient HTTPClient, dbConn DatabaseConnector, lineAPI string) *Validator {
	return &Validator{httpClient: httpClient, dbConn: dbConn, lineAPI: lineAPI}
}

// validateTimeout bounds each active probe.
const validateTimeout = 15 * time.Second

func pass(format string, args ...any) ValidationResult {
	return ValidationResult{Valid: true, Message: fmt.Sprintf(format, args...)}
}

func fail(format string, args ...any) ValidationResult {
	return ValidationResult{Message: fmt.Sprintf(format, args...)}
}

// ValidateLineToken calls GET /v2/bot/info with the token. The endpoint is
// read-only and answers 200 for any live channel token.
func (v *Validator) ValidateLineToken(ctx context.Context, token string) ValidationResult {
	token = strings.TrimSpace(token)
	switch {
	case token == "":
		return fail("channel access token must not be empty")
	case strings.ContainsAny(token, " \t"):
		return fail("channel access token must not contain whitespace")
	}

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	endpoint := strings.TrimSuffix(v.lineAPI, "/") + "/v2/bot/info"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail("cannot build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fail("cannot reach LINE: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode != http.StatusOK {
		return fail("LINE answered %d: %s", resp.StatusCode, truncateBody(body, 200))
	}

	var bot struct {
		DisplayName string `json:"displayName"`
		BasicID     string `json:"basicId"`
	}
	if json.Unmarshal(body, &bot) != nil || bot.DisplayName == "" {
		return pass("token accepted by LINE")
	}
	return pass("token belongs to %s (%s)", bot.DisplayName, bot.BasicID)
}

// lineID matches user (U), group (C) and room (R) IDs.
var lineID = regexp.MustCompile(`^[UCR][0-9a-f]{32}$`)

// ValidatePushTarget only checks the ID format; pushing a test message would
// spam the target.
func (v *Validator) ValidatePushTarget(_ context.Context, id string) ValidationResult {
	id = strings.TrimSpace(id)
	if lineID.MatchString(id) {
		return pass("push target %s looks valid", id)
	}
	return fail("%q is not a LINE user, group or room ID (U/C/R followed by 32 hex digits)", id)
}

// ValidateDatabaseURL checks the DSN shape and then opens one connection.
func (v *Validator) ValidateDatabaseURL(ctx context.Context, dsn string) ValidationResult {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return fail("database URL must not be empty")
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return fail("unparseable URL: %v", err)
	}
	switch {
	case u.Scheme != "postgres" && u.Scheme != "postgresql":
		return fail("unsupported scheme %q, use postgres:// or postgresql://", u.Scheme)
	case u.Hostname() == "":
		return fail("database URL has no host")
	}

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()
	if err := v.dbConn.Connect(ctx, dsn); err != nil {
		return fail("connection failed: %v", err)
	}
	return pass("connected to %s", u.Hostname())
}

// truncateBody cuts body to n bytes and appends "..." when it had to.
func truncateBody(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
