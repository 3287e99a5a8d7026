package v1

import (
	"time"

	"github.com/shenikar/community_alerts/internal/models"
)

// DTOToAlertDraft преобразует DTO в черновик алерта
func DTOToAlertDraft(dto AlertDraftRequest) models.AlertDraft {
	return models.AlertDraft{
		Category:    models.Category(dto.Category),
		Description: dto.Description,
		Image:       dto.Image,
		Location: models.Location{
			Latitude:  dto.Location.Latitude,
			Longitude: dto.Location.Longitude,
			Address:   dto.Location.Address,
		},
	}
}

// ModelToCommentResponse преобразует комментарий в DTO для ответа
func ModelToCommentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt.UnixMilli(),
	}
}

// ModelToAlertResponse преобразует доменную модель в DTO для ответа.
// editLeft - остаток окна редактирования для текущего пользователя, 0 если правка недоступна.
func ModelToAlertResponse(model *models.Alert, editLeft time.Duration) *AlertResponse {
	comments := make([]CommentResponse, len(model.Comments))
	for i, c := range model.Comments {
		comments[i] = ModelToCommentResponse(c)
	}
	resp := &AlertResponse{
		ID:               model.ID,
		AuthorID:         model.AuthorID,
		AuthorName:       model.AuthorName,
		AuthorReputation: model.AuthorReputation,
		Category:         string(model.Category),
		Description:      model.Description,
		Image:            model.Image,
		Location: LocationDTO{
			Latitude:  model.Location.Latitude,
			Longitude: model.Location.Longitude,
			Address:   model.Location.Address,
		},
		CreatedAt: model.CreatedAt.UnixMilli(),
		Upvotes:   model.Upvotes,
		Downvotes: model.Downvotes,
		Status:    string(model.Status),
		Comments:  comments,
		Version:   model.Version,
		CanEdit:   editLeft > 0,
	}
	if editLeft > 0 {
		resp.EditWindowLeftMs = editLeft.Milliseconds()
	}
	return resp
}

// SettingsToDTO и DTOToSettings переводят настройки уведомлений между слоями
func SettingsToDTO(s models.NotificationSettings) SettingsDTO {
	categories := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		categories[i] = string(c)
	}
	return SettingsDTO{Enabled: s.Enabled, RadiusKm: s.RadiusKm, Categories: categories}
}

func DTOToSettings(dto SettingsDTO) models.NotificationSettings {
	categories := make([]models.Category, len(dto.Categories))
	for i, c := range dto.Categories {
		categories[i] = models.Category(c)
	}
	return models.NotificationSettings{Enabled: dto.Enabled, RadiusKm: dto.RadiusKm, Categories: categories}
}
