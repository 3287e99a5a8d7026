// Package assistant - рекомендательный AI-анализ алертов, чат и озвучивание.
// Результаты никогда не блокируют отправку алерта.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

// maxSpeechInput - ограничение длины текста для TTS
const maxSpeechInput = 4096

// ErrNotConfigured - ключ API не задан
var ErrNotConfigured = errors.New("assistant is not configured")

const analysisPrompt = `Eres un experto en seguridad ciudadana de %s.
Analiza minuciosamente este reporte: "%s".

Instrucciones:
1. Valida si menciona calles, barrios o puntos de referencia locales.
2. Evalúa si el lenguaje es consistente con un reporte de emergencia real.
3. Si hay imagen, cruza la información visual con la descripción.
4. Determina la legitimidad y proporciona un razonamiento breve.

Responde solo con un objeto JSON con los campos:
is_legitimate (bool), confidence (número 0.0-1.0), reasoning (string),
category (uno de: Accident, Crime, Traffic, Fire, Service, BrokenAsphalt),
sub_category (string), severity (Baja, Media o Alta), suggestion (string),
improved_description (string).`

const chatPrompt = `Eres un asistente para vecinos de %s. Responde de forma breve y concreta.
Si la pregunta trata de una ubicación, da dirección y referencias útiles.`

// Etiquetas, con las que el modelo a veces responde en lugar del identificador
var categoryLabels = map[string]models.Category{
	"accidente":         models.CategoryAccident,
	"seguridad/robo":    models.CategoryCrime,
	"tránsito":          models.CategoryTraffic,
	"transito":          models.CategoryTraffic,
	"incendio":          models.CategoryFire,
	"corte de servicio": models.CategoryService,
	"asfalto roto":      models.CategoryBrokenAsphalt,
}

type Assistant struct {
	client *openai.Client
	model  string
	voice  string
	region string
	logger *logrus.Logger
}

func New(cfg *config.Config, logger *logrus.Logger) *Assistant {
	a := &Assistant{
		model:  cfg.OpenAIModel,
		voice:  cfg.OpenAISpeechVoice,
		region: cfg.GeocodeRegion,
		logger: logger,
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, assistant endpoints are disabled")
		return a
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	a.client = openai.NewClientWithConfig(clientCfg)
	return a
}

type analysisResponse struct {
	IsLegitimate        bool    `json:"is_legitimate"`
	Confidence          float64 `json:"confidence"`
	Reasoning           string  `json:"reasoning"`
	Category            string  `json:"category"`
	SubCategory         string  `json:"sub_category"`
	Severity            string  `json:"severity"`
	Suggestion          string  `json:"suggestion"`
	ImprovedDescription string  `json:"improved_description"`
}

// Analyze оценивает правдоподобность текста и предлагает категорию.
// image - base64 или data URL.
func (a *Assistant) Analyze(ctx context.Context, description string, image *string) (*models.Analysis, error) {
	if a.client == nil {
		return nil, ErrNotConfigured
	}
	log := a.logger.WithFields(logrus.Fields{
		"service": "assistant",
		"method":  "Analyze",
	})

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf(analysisPrompt, a.region, description)},
	}
	if image != nil && *image != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: imageURL(*image)},
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		log.WithError(err).Error("OpenAI analysis call failed")
		return nil, fmt.Errorf("analysis call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("analysis returned no choices")
	}

	var raw analysisResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		log.WithError(err).Warn("Analysis response is not valid JSON")
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}

	return &models.Analysis{
		IsLegitimate:        raw.IsLegitimate,
		Confidence:          clamp01(raw.Confidence),
		Reasoning:           raw.Reasoning,
		Category:            normalizeCategory(raw.Category),
		SubCategory:         raw.SubCategory,
		Severity:            raw.Severity,
		Suggestion:          raw.Suggestion,
		ImprovedDescription: raw.ImprovedDescription,
	}, nil
}

// Chat отвечает на вопрос с учетом региона и, если известна, позиции пользователя
func (a *Assistant) Chat(ctx context.Context, query string, lat, lng *float64) (string, error) {
	if a.client == nil {
		return "", ErrNotConfigured
	}

	system := fmt.Sprintf(chatPrompt, a.region)
	if lat != nil && lng != nil {
		system += fmt.Sprintf("\nPosición del usuario: %.5f, %.5f.", *lat, *lng)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		a.logger.WithError(err).WithField("service", "assistant").Error("OpenAI chat call failed")
		return "", fmt.Errorf("chat call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Speak озвучивает текст и возвращает mp3
func (a *Assistant) Speak(ctx context.Context, text string) ([]byte, error) {
	if a.client == nil {
		return nil, ErrNotConfigured
	}
	if runes := []rune(text); len(runes) > maxSpeechInput {
		text = string(runes[:maxSpeechInput])
	}

	resp, err := a.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(a.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		a.logger.WithError(err).WithField("service", "assistant").Error("OpenAI speech call failed")
		return nil, fmt.Errorf("speech call failed: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech: %w", err)
	}
	return audio, nil
}

func imageURL(image string) string {
	if strings.HasPrefix(image, "data:") || strings.HasPrefix(image, "https://") {
		return image
	}
	return "data:image/jpeg;base64," + image
}

func normalizeCategory(s string) models.Category {
	s = strings.TrimSpace(s)
	for _, c := range models.AllCategories() {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	if c, ok := categoryLabels[strings.ToLower(s)]; ok {
		return c
	}
	return ""
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
