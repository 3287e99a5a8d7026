package models

// NotificationSettings - настройки уведомлений пользователя
type NotificationSettings struct {
	Enabled    bool       `json:"enabled"`
	RadiusKm   float64    `json:"radius_km"`
	Categories []Category `json:"categories"`
}

// DefaultNotificationSettings - настройки для пользователя, который их еще не сохранял
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:    true,
		RadiusKm:   5,
		Categories: AllCategories(),
	}
}

// Subscribed сообщает, включена ли категория в настройках
func (s NotificationSettings) Subscribed(c Category) bool {
	for _, sc := range s.Categories {
		if sc == c {
			return true
		}
	}
	return false
}

// Place - результат геокодирования
type Place struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Analysis - рекомендательный результат AI-анализа текста алерта
type Analysis struct {
	IsLegitimate        bool     `json:"is_legitimate"`
	Confidence          float64  `json:"confidence"`
	Reasoning           string   `json:"reasoning"`
	Category            Category `json:"category"`
	SubCategory         string   `json:"sub_category"`
	Severity            string   `json:"severity"`
	Suggestion          string   `json:"suggestion,omitempty"`
	ImprovedDescription string   `json:"improved_description"`
}
