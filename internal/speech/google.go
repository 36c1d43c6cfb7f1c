package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/alkime/stretch/internal/audio"
)

const (
	googleEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

	// DefaultGoogleVoice is the Korean standard voice.
	DefaultGoogleVoice = "ko-KR-Standard-A"

	googleSampleRate = 24000
)

// GoogleSynthesizer calls the Google Cloud Text-to-Speech REST API.
type GoogleSynthesizer struct {
	apiKey     string
	voice      string
	endpoint   string
	httpClient *http.Client
}

// GoogleOption customizes a GoogleSynthesizer.
type GoogleOption func(*GoogleSynthesizer)

// WithGoogleEndpoint overrides the synthesize URL.
func WithGoogleEndpoint(endpoint string) GoogleOption {
	return func(g *GoogleSynthesizer) { g.endpoint = endpoint }
}

// WithGoogleHTTPClient overrides the HTTP client.
func WithGoogleHTTPClient(c *http.Client) GoogleOption {
	return func(g *GoogleSynthesizer) { g.httpClient = c }
}

// NewGoogleSynthesizer creates a synthesizer. An empty voice uses
// DefaultGoogleVoice.
func NewGoogleSynthesizer(apiKey, voice string, opts ...GoogleOption) *GoogleSynthesizer {
	if voice == "" {
		voice = DefaultGoogleVoice
	}

	g := &GoogleSynthesizer{
		apiKey:     apiKey,
		voice:      voice,
		endpoint:   googleEndpoint,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

type googleRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding   string `json:"audioEncoding"`
		SampleRateHertz int    `json:"sampleRateHertz"`
	} `json:"audioConfig"`
}

type googleResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize implements Synthesizer.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, languageCode string) (*audio.Clip, error) {
	if g.apiKey == "" {
		return nil, errors.New("API key required: set GOOGLE_TTS_API_KEY or run 'stretch config set-key google'")
	}

	var reqBody googleRequest
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = languageCode
	reqBody.Voice.Name = g.voice
	reqBody.AudioConfig.AudioEncoding = "LINEAR16"
	reqBody.AudioConfig.SampleRateHertz = googleSampleRate

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesize request: %w", err)
	}

	u, err := url.Parse(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", g.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call text-to-speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("text-to-speech returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode synthesize response: %w", err)
	}

	if out.AudioContent == "" {
		return nil, nil
	}

	wav, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}

	clip, err := audio.DecodeWAV(wav)
	if err != nil {
		return nil, fmt.Errorf("failed to decode synthesized audio: %w", err)
	}

	return clip, nil
}
