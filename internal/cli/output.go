package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/rollcall/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected submission, failed scenario, non-deterministic replay
	ExitCommandError = 2 // Command error (bad flags, database unreachable, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // domain.ErrorKind code, e.g. "not_found"
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// In text mode, text renders data; if text is nil data is printed with Println.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: data})
	}

	if text != nil {
		text(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports a service error and returns the matching ExitError.
// Domain outcomes exit with ExitFailure; infrastructure faults with
// ExitCommandError.
func (f *OutputFormatter) Fail(message string, err error) error {
	kind := domain.KindOf(err)

	var details any
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		details = ve.Violations
	}
	_ = f.Error(kind.String(), err.Error(), details)

	code := ExitFailure
	if kind == domain.KindInternal {
		code = ExitCommandError
	}
	return WrapExitError(code, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// writeListing prints a listing's configuration on one line.
func writeListing(w io.Writer, l domain.Listing) {
	capacity := "unbounded"
	if n, ok := l.Capacity(); ok {
		capacity = fmt.Sprintf("max %d", n)
	}
	cutoff := "no cutoff"
	if c, ok := l.Cutoff(); ok {
		cutoff = "cutoff " + c.UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(w, "%s  %s  (%s, %s)\n", l.ID, l.Name, capacity, cutoff)
}

// writeRoster prints a computed listing as three labelled lists.
func writeRoster(w io.Writer, c domain.ComputedListing) {
	writeListing(w, c.Listing)
	fmt.Fprintf(w, "Main (%d):    %s\n", len(c.MainList), joinParticipants(c.MainList))
	fmt.Fprintf(w, "Reserve (%d): %s\n", len(c.ReserveList), joinParticipants(c.ReserveList))
	fmt.Fprintf(w, "Paying (%d):  %s\n", len(c.PayingParticipants), joinParticipants(c.PayingParticipants))
}

func joinParticipants(ps []domain.Participant) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
		if p.IsInvitee {
			names[i] += " (invitee)"
		}
	}
	return strings.Join(names, ", ")
}
