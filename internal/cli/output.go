package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation refused or failed (uncommitted changes, corrupt state, etc.)
	ExitCommandError = 2 // Command error (bad arguments, unknown time, no gate here, etc.)
)

// Error codes carried in JSON error responses.
const (
	CodeNotInitialized = "E001"
	CodeUncommitted    = "E002"
	CodeNotTracked     = "E003"
	CodeInvalidMove    = "E004"
	CodeCorrupt        = "E005"
	CodeBadTime        = "E006"
	CodeConfig         = "E007"
	CodeInternal       = "E100"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written through an OutputFormatter
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
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// alreadyReported reports whether err was printed by the command itself.
func alreadyReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// classifyError maps engine and store errors to an exit code and a JSON
// error code.
func classifyError(err error) (int, string) {
	switch {
	case err == nil:
		return ExitSuccess, ""
	case engine.IsUncommitted(err):
		return ExitFailure, CodeUncommitted
	case errors.Is(err, engine.ErrOccupied):
		return ExitFailure, CodeUncommitted
	case engine.IsNotTracked(err):
		return ExitCommandError, CodeNotTracked
	case errors.Is(err, engine.ErrInvalidMove):
		return ExitCommandError, CodeInvalidMove
	case store.IsCorrupt(err), errors.Is(err, store.ErrUnsupportedSchema):
		return ExitFailure, CodeCorrupt
	}
	return ExitFailure, CodeInternal
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	Color     bool // Only honored for text output
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Tone selects the color of a text line.
type Tone int

const (
	TonePlain Tone = iota
	ToneGood       // bright green
	ToneTravel     // bright magenta
	ToneBad        // bright red
	ToneAdded
	ToneRemoved
	ToneModified
	ToneDim
)

var toneAttrs = map[Tone][]color.Attribute{
	ToneGood:     {color.FgHiGreen},
	ToneTravel:   {color.FgHiMagenta},
	ToneBad:      {color.FgHiRed},
	ToneAdded:    {color.FgGreen},
	ToneRemoved:  {color.FgRed},
	ToneModified: {color.FgYellow},
	ToneDim:      {color.Faint},
}

// Paint colors s when color output is on.
func (f *OutputFormatter) Paint(tone Tone, s string) string {
	attrs, ok := toneAttrs[tone]
	if !ok || !f.Color || f.Format == "json" {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Line prints one text line. JSON output ignores it.
func (f *OutputFormatter) Line(tone Tone, format string, args ...any) {
	if f.Format == "json" {
		return
	}
	fmt.Fprintln(f.Writer, f.Paint(tone, fmt.Sprintf(format, args...)))
}

// Success outputs a successful result in the configured format.
// Text output prints data only when it is a non-empty string; commands print
// their own text lines.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if s, ok := data.(string); ok && s != "" {
		fmt.Fprintln(f.Writer, s)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintln(f.GetErrWriter(), f.Paint(ToneBad, message))
	if f.Verbose && details != nil {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through Error and returns it as an ExitError.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, errCode := classifyError(err)
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(errCode, text, nil)
	exitErr := WrapExitError(code, message, err)
	exitErr.reported = true
	return exitErr
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

// isTerminal reports whether w is a terminal. Anything that is not an
// *os.File (buffers in tests, pipes wrapped by cobra) counts as not.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
