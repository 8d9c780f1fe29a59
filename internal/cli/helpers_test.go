package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	templatesDir   = "../../testdata/templates"
	brokenDir      = "../../testdata/broken"
	closetGrid     = "../../testdata/grids/closet.yaml"
	villageGrid    = "../../testdata/grids/village.yaml"
	closetRequests = "../../testdata/requests/closet.yaml"
	villageReqs    = "../../testdata/requests/village.yaml"
	scenariosDir   = "../../testdata/scenarios"

	// closetHash is the batch hash of one potion chest at (1,1).
	closetHash = "ae26cbfa6b72e3208b025a552cf4848156db8482f869f89cbeba42717c3cde50"
)

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse parses a JSON CLI response and decodes its data into v.
func decodeResponse(t *testing.T, output string, v any) CLIResponse {
	t.Helper()
	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp), "output: %s", output)
	if v != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return resp.CLIResponse
}

// decodeErrorDetails parses a JSON error response and decodes its details
// into v.
func decodeErrorDetails(t *testing.T, output string, v any) CLIResponse {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp), "output: %s", output)
	if v != nil && len(resp.Error.Details) > 0 {
		require.NoError(t, json.Unmarshal(resp.Error.Details, v))
	}
	return CLIResponse{
		Status: resp.Status,
		Error:  &CLIError{Code: resp.Error.Code, Message: resp.Error.Message},
	}
}
