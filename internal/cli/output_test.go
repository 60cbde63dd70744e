package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/store"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"removed": "a.txt"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"removed": "a.txt"}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(CodeNotTracked, "path is not tracked", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotTracked, resp.Error.Code)
	assert.Equal(t, "path is not tracked", resp.Error.Message)
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	err := formatter.Error(CodeBadTime, `i do not understand the time "soon"`, "details here")
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `i do not understand the time "soon"`)
	assert.Contains(t, errOut.String(), "Details: details here")
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("all done"))
	assert.Equal(t, "all done\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success(map[string]int{"n": 1}))
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_LineSkippedForJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	formatter.Line(ToneGood, "opening your gate")
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_Paint(t *testing.T) {
	plain := &OutputFormatter{Format: "text"}
	assert.Equal(t, "hello", plain.Paint(ToneGood, "hello"))

	colored := &OutputFormatter{Format: "text", Color: true}
	painted := colored.Paint(ToneGood, "hello")
	assert.Contains(t, painted, "\x1b[")
	assert.Contains(t, painted, "hello")
	assert.Equal(t, "hello", colored.Paint(TonePlain, "hello"))

	jsonOut := &OutputFormatter{Format: "json", Color: true}
	assert.Equal(t, "hello", jsonOut.Paint(ToneGood, "hello"))
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("tracking %d paths", 3)

			if tt.wantLog {
				assert.Contains(t, buf.String(), "tracking 3 paths")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Fail("cannot commit", engine.ErrNotAtPresent)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, alreadyReported(err))
	assert.ErrorIs(t, err, engine.ErrNotAtPresent)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUncommitted, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "cannot commit")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantExit int
		wantCode string
	}{
		{"uncommitted", engine.ErrUncommittedChanges, ExitFailure, CodeUncommitted},
		{"not_at_present", fmt.Errorf("commit: %w", engine.ErrNotAtPresent), ExitFailure, CodeUncommitted},
		{"occupied", engine.ErrOccupied, ExitFailure, CodeUncommitted},
		{"not_tracked", &engine.PathError{Op: "remove", Path: "x", Err: engine.ErrNotTracked}, ExitCommandError, CodeNotTracked},
		{"invalid_move", engine.ErrInvalidMove, ExitCommandError, CodeInvalidMove},
		{"corrupt", &store.CorruptStoreError{Path: "p", Reason: "r"}, ExitFailure, CodeCorrupt},
		{"schema", store.ErrUnsupportedSchema, ExitFailure, CodeCorrupt},
		{"other", errors.New("disk on fire"), ExitFailure, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exit, code := classifyError(tt.err)
			assert.Equal(t, tt.wantExit, exit)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("cause")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "inner: cause", WrapExitError(ExitFailure, "inner", errors.New("cause")).Error())
}
