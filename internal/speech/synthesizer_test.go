package speech_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alkime/stretch/internal/speech"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linear16WAV wraps pcm in the header Google returns for LINEAR16.
func linear16WAV(pcm []byte, rate uint32) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, rate)
	_ = binary.Write(&b, binary.LittleEndian, rate*2)
	_ = binary.Write(&b, binary.LittleEndian, uint16(2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestGoogleSynthesizer_Synthesize(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}

	var got map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString(linear16WAV(pcm, 24000)),
		})
	}))
	defer srv.Close()

	synth := speech.NewGoogleSynthesizer("test-key", "", speech.WithGoogleEndpoint(srv.URL))

	clip, err := synth.Synthesize(context.Background(), "정답입니다", "ko-KR")
	require.NoError(t, err)
	require.NotNil(t, clip)

	assert.Equal(t, pcm, clip.PCM)
	assert.Equal(t, 24000, clip.SampleRate)
	assert.Equal(t, 1, clip.Channels)

	assert.Equal(t, "정답입니다", got["input"]["text"])
	assert.Equal(t, "ko-KR", got["voice"]["languageCode"])
	assert.Equal(t, speech.DefaultGoogleVoice, got["voice"]["name"])
	assert.Equal(t, "LINEAR16", got["audioConfig"]["audioEncoding"])
}

func TestGoogleSynthesizer_Synthesize_EmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	synth := speech.NewGoogleSynthesizer("test-key", "", speech.WithGoogleEndpoint(srv.URL))

	clip, err := synth.Synthesize(context.Background(), "text", "ko-KR")

	require.NoError(t, err)
	assert.Nil(t, clip)
}

func TestGoogleSynthesizer_Synthesize_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "API key not valid", http.StatusForbidden)
	}))
	defer srv.Close()

	t.Run("missing API key", func(t *testing.T) {
		_, err := speech.NewGoogleSynthesizer("", "").Synthesize(context.Background(), "text", "ko-KR")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("non-200 response", func(t *testing.T) {
		synth := speech.NewGoogleSynthesizer("bad", "", speech.WithGoogleEndpoint(srv.URL))
		_, err := synth.Synthesize(context.Background(), "text", "ko-KR")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "API key not valid")
	})
}

func TestOpenAISynthesizer_Synthesize(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3} // trailing half sample is dropped

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/audio/speech"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pcm)
	}))
	defer srv.Close()

	synth := speech.NewOpenAISynthesizer("test-key", "nova",
		option.WithBaseURL(srv.URL+"/v1/"),
		option.WithMaxRetries(0),
	)

	clip, err := synth.Synthesize(context.Background(), "hello", "en-US")
	require.NoError(t, err)
	require.NotNil(t, clip)

	assert.Equal(t, []byte{1, 0, 2, 0}, clip.PCM)
	assert.Equal(t, 24000, clip.SampleRate)
	assert.Equal(t, "pcm", body["response_format"])
	assert.Equal(t, "nova", body["voice"])
	assert.Equal(t, "hello", body["input"])
}

func TestOpenAISynthesizer_Synthesize_MissingAPIKey(t *testing.T) {
	_, err := speech.NewOpenAISynthesizer("", "").Synthesize(context.Background(), "text", "ko-KR")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
