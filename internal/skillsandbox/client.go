// Package skillsandbox is a thin client for the external WASM skill
// sandbox: it fetches compiled bytecode from the gateway and forwards
// execution requests over HTTP. The sandbox process itself (the WASM
// runtime) is out of scope here, per spec §8 Non-goals.
package skillsandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hx-helix/memplane/internal/gateway"
	"github.com/hx-helix/memplane/internal/herrors"
)

type executeRequest struct {
	SkillID uuid.UUID       `json:"skill_id"`
	Input   json.RawMessage `json:"input"`
}

type executeResponse struct {
	Success bool            `json:"success"`
	Output  json.RawMessage `json:"output"`
	Error   string          `json:"error"`
}

// Client fetches a skill's bytecode via the gateway and hands it, along
// with the caller's input, to an out-of-process sandbox over HTTP.
// Grounded on
// original_source/helix-rust/crates/skill-sandbox/src/rpc_server.rs's
// execute_skill handler, inverted from a server into the client that
// would call it.
type Client struct {
	gw         gateway.Gateway
	sandboxURL string
	http       *http.Client
}

// NewClient builds a skill sandbox client. sandboxURL is the base URL
// of the out-of-process WASM runtime's /execute endpoint.
func NewClient(gw gateway.Gateway, sandboxURL string) *Client {
	return &Client{gw: gw, sandboxURL: sandboxURL, http: &http.Client{Timeout: 30 * time.Second}}
}

// Execute fetches skillID's bytecode, then posts it with input to the
// sandbox and returns its raw JSON output.
func (c *Client) Execute(ctx context.Context, skillID uuid.UUID, input json.RawMessage) (json.RawMessage, error) {
	if _, err := c.gw.FetchSkillBytecode(ctx, skillID); err != nil {
		return nil, err
	}

	body, err := json.Marshal(executeRequest{SkillID: skillID, Input: input})
	if err != nil {
		return nil, herrors.New(herrors.Malformed, "marshal execute request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sandboxURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, herrors.New(herrors.Fatal, "build sandbox request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, herrors.New(herrors.Transient, "call skill sandbox", err)
	}
	defer resp.Body.Close()

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, herrors.New(herrors.Transient, "decode sandbox response", err)
	}
	if !out.Success {
		return nil, herrors.Transientf("skill execution failed: %s", out.Error)
	}
	return out.Output, nil
}
