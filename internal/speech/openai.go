package speech

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alkime/stretch/internal/audio"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI returns raw PCM at a fixed format.
const (
	openAISampleRate = 24000
	openAIChannels   = 1
)

// OpenAISynthesizer calls the OpenAI audio/speech endpoint.
type OpenAISynthesizer struct {
	apiKey  string
	voice   openai.AudioSpeechNewParamsVoice
	options []option.RequestOption
}

// NewOpenAISynthesizer creates a synthesizer. An empty voice uses alloy.
// Extra request options are passed to the OpenAI client.
func NewOpenAISynthesizer(apiKey, voice string, opts ...option.RequestOption) *OpenAISynthesizer {
	v := openai.AudioSpeechNewParamsVoiceAlloy
	if voice != "" {
		v = openai.AudioSpeechNewParamsVoice(voice)
	}

	return &OpenAISynthesizer{
		apiKey:  apiKey,
		voice:   v,
		options: opts,
	}
}

// Synthesize implements Synthesizer. The language is detected from the text.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, _ string) (*audio.Clip, error) {
	if s.apiKey == "" {
		return nil, errors.New("API key required: set OPENAI_API_KEY or run 'stretch config set-key openai'")
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(s.apiKey)}, s.options...)...)

	resp, err := client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModelTTS1,
		Voice:          s.voice,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech via OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}

	if len(pcm) == 0 {
		return nil, nil
	}

	// drop a trailing partial sample if the stream was cut short
	pcm = pcm[:len(pcm)-len(pcm)%(2*openAIChannels)]

	return &audio.Clip{
		PCM:        pcm,
		SampleRate: openAISampleRate,
		Channels:   openAIChannels,
	}, nil
}
