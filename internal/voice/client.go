// Package voice is a thin client for the external speech-to-text
// provider used by the voice pipeline: it transcribes audio and, via
// the gateway, persists the resulting transcript. The audio capture and
// playback pipeline itself is out of scope here, per spec §8 Non-goals.
package voice

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

const transcribeURL = "https://api.deepgram.com/v1/listen?model=nova-2&smart_format=true"

type transcriptionResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float32 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Client transcribes audio via Deepgram and records the transcript
// through the gateway. Grounded on
// original_source/helix-rust/crates/voice-pipeline/src/deepgram_client.rs.
type Client struct {
	gw     gateway.Gateway
	apiKey string
	http   *http.Client
}

// NewClient builds a voice client. apiKey is the Deepgram API token.
func NewClient(gw gateway.Gateway, apiKey string) *Client {
	return &Client{gw: gw, apiKey: apiKey, http: &http.Client{Timeout: 60 * time.Second}}
}

// TranscribeAndRecord sends audioBytes to Deepgram, then inserts the
// resulting transcript as a voice record for userID.
func (c *Client) TranscribeAndRecord(ctx context.Context, userID uuid.UUID, audioURL string, audioBytes []byte) error {
	transcript, err := c.transcribe(ctx, audioBytes)
	if err != nil {
		return err
	}

	rec := gateway.VoiceRecord{
		ID:         uuid.New(),
		UserID:     userID,
		Transcript: transcript,
		AudioURL:   audioURL,
		CreatedAt:  time.Now().UTC(),
	}
	return c.gw.InsertVoiceRecord(ctx, rec)
}

func (c *Client) transcribe(ctx context.Context, audioBytes []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, transcribeURL, bytes.NewReader(audioBytes))
	if err != nil {
		return "", herrors.New(herrors.Fatal, "build deepgram request", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", herrors.New(herrors.Transient, "call deepgram", err)
	}
	defer resp.Body.Close()

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", herrors.New(herrors.Transient, "decode deepgram response", err)
	}

	if len(result.Results.Channels) == 0 || len(result.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return result.Results.Channels[0].Alternatives[0].Transcript, nil
}
