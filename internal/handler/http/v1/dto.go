package v1

import (
	"github.com/google/uuid"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/service"
)

// LocationDTO DTO точки на карте
// @Description Точка на карте с адресом
type LocationDTO struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lng" validate:"longitude"`
	Address   string  `json:"address" validate:"required,max=500"`
}

// AlertDraftRequest DTO для создания и редактирования алерта
// @Description DTO для создания и редактирования алерта
type AlertDraftRequest struct {
	Category    string      `json:"category" validate:"required,oneof=Accident Crime Traffic Fire Service BrokenAsphalt"`
	Description string      `json:"description" validate:"required,max=2000"`
	Image       *string     `json:"image,omitempty"`
	Location    LocationDTO `json:"location"`
}

// VoteRequest DTO голоса
// @Description DTO голоса
type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// CommentRequest DTO нового комментария
// @Description DTO нового комментария
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// CommentResponse DTO комментария. created_at - миллисекунды Unix.
// @Description DTO комментария
type CommentResponse struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
	CreatedAt  int64  `json:"created_at"`
}

// AlertResponse DTO для ответа с информацией об алерте
// @Description DTO для ответа с информацией об алерте
type AlertResponse struct {
	ID               uuid.UUID         `json:"id"`
	AuthorID         string            `json:"author_id"`
	AuthorName       string            `json:"author_name"`
	AuthorReputation int               `json:"author_reputation"`
	Category         string            `json:"category"`
	Description      string            `json:"description"`
	Image            *string           `json:"image,omitempty"`
	Location         LocationDTO       `json:"location"`
	CreatedAt        int64             `json:"created_at"`
	Upvotes          int               `json:"upvotes"`
	Downvotes        int               `json:"downvotes"`
	Status           string            `json:"status"`
	Comments         []CommentResponse `json:"comments"`
	Version          int64             `json:"version"`
	CanEdit          bool              `json:"can_edit"`
	// EditWindowLeftMs - сколько еще доступна правка, 0 если недоступна
	EditWindowLeftMs int64             `json:"edit_window_left_ms"`
}

// FeedMessage сообщение живой ленты: отфильтрованный снимок и id изменившихся алертов
// @Description Сообщение живой ленты
type FeedMessage struct {
	Type    string               `json:"type"`
	Alerts  []*AlertResponse     `json:"alerts"`
	Changes service.SnapshotDiff `json:"changes"`
}

// AcceptedResponse - запись принята, изменение придет со следующим снимком
// @Description Запись принята хранилищем
type AcceptedResponse struct {
	Status string `json:"status"`
}

// GuestSessionResponse DTO новой гостевой сессии
// @Description DTO новой гостевой сессии
type GuestSessionResponse struct {
	Session string      `json:"session"`
	User    models.User `json:"user"`
}

// AnalyzeRequest DTO для AI-анализа текста алерта
// @Description DTO для AI-анализа текста алерта
type AnalyzeRequest struct {
	Description string  `json:"description" validate:"required,max=2000"`
	Image       *string `json:"image,omitempty"`
}

// ChatRequest DTO вопроса ассистенту
// @Description DTO вопроса ассистенту
type ChatRequest struct {
	Query     string   `json:"query" validate:"required,max=2000"`
	Latitude  *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
}

// ChatResponse DTO ответа ассистента
// @Description DTO ответа ассистента
type ChatResponse struct {
	Answer string `json:"answer"`
}

// SpeechRequest DTO для озвучивания
// @Description DTO для озвучивания
type SpeechRequest struct {
	Text string `json:"text" validate:"required,max=4096"`
}

// SettingsDTO DTO настроек уведомлений
// @Description DTO настроек уведомлений
type SettingsDTO struct {
	Enabled    bool     `json:"enabled"`
	RadiusKm   float64  `json:"radius_km" validate:"gt=0,lte=50"`
	Categories []string `json:"categories" validate:"dive,oneof=Accident Crime Traffic Fire Service BrokenAsphalt"`
}

// LocationCheckRequest DTO для проверки координат
// @Description DTO для проверки координат
type LocationCheckRequest struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lng" validate:"longitude"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	UserCount int `json:"user_count"`
}
