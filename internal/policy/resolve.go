package policy

import "github.com/shenikar/community_alerts/internal/models"

// ResolveRule определяет, кто может перевести алерт в resolved
type ResolveRule int

const (
	// ResolveByAuthor - только автор
	ResolveByAuthor ResolveRule = iota
	// ResolveByCommunity - любой зарегистрированный пользователь (подтверждение соседями)
	ResolveByCommunity
)

// resolveRules - правила по категориям. Категории без записи решает только автор.
var resolveRules = map[models.Category]ResolveRule{
	models.CategoryBrokenAsphalt: ResolveByCommunity,
}

// ResolveRuleFor возвращает правило для категории
func ResolveRuleFor(c models.Category) ResolveRule {
	if rule, ok := resolveRules[c]; ok {
		return rule
	}
	return ResolveByAuthor
}

// CanResolve проверяет право пользователя закрыть алерт. Гости не закрывают алерты.
func CanResolve(alert *models.Alert, user *models.User) bool {
	if alert == nil || user == nil || user.IsGuest {
		return false
	}
	switch ResolveRuleFor(alert.Category) {
	case ResolveByCommunity:
		return true
	default:
		return alert.AuthorID == user.ID
	}
}
