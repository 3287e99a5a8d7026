package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAlertNotFound возвращается хранилищем, если алерта с таким id нет
var ErrAlertNotFound = errors.New("alert not found")

// Category - категория инцидента
type Category string

const (
	CategoryAccident      Category = "Accident"
	CategoryCrime         Category = "Crime"
	CategoryTraffic       Category = "Traffic"
	CategoryFire          Category = "Fire"
	CategoryService       Category = "Service"
	CategoryBrokenAsphalt Category = "BrokenAsphalt"
)

// AllCategories возвращает все категории в порядке отображения
func AllCategories() []Category {
	return []Category{
		CategoryAccident,
		CategoryCrime,
		CategoryTraffic,
		CategoryFire,
		CategoryService,
		CategoryBrokenAsphalt,
	}
}

// Valid проверяет, что категория входит в перечисление
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory разбирает строку в категорию
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}

// Status - состояние алерта. Переходы только active -> resolved и active -> verified.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
	StatusVerified Status = "verified"
)

// Location - точка на карте и адрес. Адрес не обязан совпадать с координатами.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Comment - неизменяемый комментарий к алерту
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Alert - запись об инциденте. Данные автора - снимок на момент создания.
type Alert struct {
	ID               uuid.UUID `json:"id"`
	AuthorID         string    `json:"author_id"`
	AuthorName       string    `json:"author_name"`
	AuthorReputation int       `json:"author_reputation"`
	Category         Category  `json:"category"`
	Description      string    `json:"description"`
	Image            *string   `json:"image,omitempty"`
	Location         Location  `json:"location"`
	CreatedAt        time.Time `json:"created_at"`
	Upvotes          int       `json:"upvotes"`
	Downvotes        int       `json:"downvotes"`
	Status           Status    `json:"status"`
	Comments         []Comment `json:"comments"`
	// Version увеличивается хранилищем при каждой записи
	Version int64 `json:"version"`
}

// AlertDraft - данные, которые пользователь вводит при создании или редактировании
type AlertDraft struct {
	Category    Category
	Description string
	Image       *string
	Location    Location
}

// AlertPatch - набор полей для слияния с удаленной записью. nil означает "не менять".
type AlertPatch struct {
	Category    *Category
	Description *string
	Image       *string
	Location    *Location
	Upvotes     *int
	Downvotes   *int
	Status      *Status
}

// IsEmpty сообщает, что патч ничего не меняет
func (p AlertPatch) IsEmpty() bool {
	return p.Category == nil &&
		p.Description == nil &&
		p.Image == nil &&
		p.Location == nil &&
		p.Upvotes == nil &&
		p.Downvotes == nil &&
		p.Status == nil
}

// VoteDirection - направление голоса
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Selection - выбор в панели фильтров: All, MyReports или конкретная категория
type Selection string

const (
	SelectionAll       Selection = "All"
	SelectionMyReports Selection = "MyReports"
)

// ParseSelection разбирает значение фильтра. Пустая строка означает All.
func ParseSelection(s string) (Selection, bool) {
	switch Selection(s) {
	case "", SelectionAll:
		return SelectionAll, true
	case SelectionMyReports:
		return SelectionMyReports, true
	}
	if _, ok := ParseCategory(s); ok {
		return Selection(s), true
	}
	return "", false
}
