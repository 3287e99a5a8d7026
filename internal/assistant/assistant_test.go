package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssistant(t *testing.T, handler http.HandlerFunc) *Assistant {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		OpenAIAPIKey:      "test-key",
		OpenAIBaseURL:     srv.URL + "/v1",
		OpenAIModel:       "gpt-4o-mini",
		OpenAISpeechVoice: "alloy",
		GeocodeRegion:     "Bahía Blanca, Argentina",
	}
	return New(cfg, logger)
}

func completion(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func TestAnalyze_NormalizesResult(t *testing.T) {
	// Подготовка
	var request map[string]any
	assistant := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`{
			"is_legitimate": true,
			"confidence": 1.7,
			"reasoning": "Menciona Av. Alem y Estomba",
			"category": "Asfalto Roto",
			"sub_category": "Bache profundo",
			"severity": "Media",
			"improved_description": "Bache profundo en Av. Alem y Estomba"
		}`))
	})
	image := "aGVsbG8="

	// Действие
	analysis, err := assistant.Analyze(context.Background(), "bache en alem y estomba", &image)

	// Проверки
	require.NoError(t, err)
	assert.True(t, analysis.IsLegitimate)
	assert.Equal(t, 1.0, analysis.Confidence)
	assert.Equal(t, models.CategoryBrokenAsphalt, analysis.Category)
	assert.Equal(t, "Bache profundo en Av. Alem y Estomba", analysis.ImprovedDescription)

	assert.Equal(t, "gpt-4o-mini", request["model"])
	format := request["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
	messages := request["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	imagePart := content[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", imagePart["url"])
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	assistant := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("no es json"))
	})

	_, err := assistant.Analyze(context.Background(), "texto", nil)

	require.Error(t, err)
}

func TestAnalyze_ProviderError(t *testing.T) {
	assistant := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	})

	_, err := assistant.Analyze(context.Background(), "texto", nil)

	require.Error(t, err)
}

func TestChat_IncludesPosition(t *testing.T) {
	assistant := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		messages := request["messages"].([]any)
		system := messages[0].(map[string]any)["content"].(string)
		assert.Contains(t, system, "Bahía Blanca")
		assert.Contains(t, system, "-38.71830, -62.26630")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("La farmacia está en Alsina 100."))
	})
	lat, lng := -38.7183, -62.2663

	answer, err := assistant.Chat(context.Background(), "¿Dónde hay una farmacia?", &lat, &lng)

	require.NoError(t, err)
	assert.Equal(t, "La farmacia está en Alsina 100.", answer)
}

func TestSpeak_ReturnsAudio(t *testing.T) {
	assistant := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		var request map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "alloy", request["voice"])
		assert.Equal(t, "mp3", request["response_format"])

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-audio"))
	})

	audio, err := assistant.Speak(context.Background(), "Incendio en Villa Mitre")

	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-audio"), audio)
}

func TestNotConfigured(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	assistant := New(&config.Config{}, logger)
	ctx := context.Background()

	_, err := assistant.Analyze(ctx, "x", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = assistant.Chat(ctx, "x", nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = assistant.Speak(ctx, "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, models.CategoryFire, normalizeCategory("fire"))
	assert.Equal(t, models.CategoryTraffic, normalizeCategory("Tránsito"))
	assert.Equal(t, models.CategoryCrime, normalizeCategory(" Seguridad/Robo "))
	assert.Equal(t, models.Category(""), normalizeCategory("Inundación"))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 0.42, clamp01(0.42))
	assert.Equal(t, 1.0, clamp01(3))
}
