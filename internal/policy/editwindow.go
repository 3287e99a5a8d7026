// Package policy содержит чистые правила доступа и фильтрации алертов.
package policy

import (
	"time"

	"github.com/shenikar/community_alerts/internal/models"
)

// EditWindow - сколько времени после создания автор может править алерт
const EditWindow = 10 * time.Minute

// CanEdit проверяет, может ли пользователь сейчас редактировать алерт.
// Результат зависит от времени, поэтому его нельзя кешировать.
// На границе окна (ровно 10 минут) правка уже запрещена.
func CanEdit(alert *models.Alert, user *models.User, now time.Time) bool {
	if alert == nil || user == nil || user.IsGuest {
		return false
	}
	if alert.AuthorID != user.ID {
		return false
	}
	return now.Sub(alert.CreatedAt) < EditWindow
}

// EditWindowRemaining возвращает остаток окна редактирования, не меньше нуля
func EditWindowRemaining(alert *models.Alert, now time.Time) time.Duration {
	left := EditWindow - now.Sub(alert.CreatedAt)
	if left < 0 {
		return 0
	}
	return left
}
