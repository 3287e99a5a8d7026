package policy

import (
	"math"

	"github.com/shenikar/community_alerts/internal/models"
)

const earthRadiusKm = 6371.0

// Filter отбирает алерты для ленты и карты. Порядок входа сохраняется.
//
// MyReports показывает только алерты пользователя и игнорирует категорию и
// переключатель решенных. verified попадает в выдачу в обоих режимах.
func Filter(alerts []*models.Alert, selection models.Selection, showResolved bool, user *models.User) []*models.Alert {
	result := make([]*models.Alert, 0, len(alerts))

	if selection == models.SelectionMyReports {
		if user == nil {
			return result
		}
		for _, a := range alerts {
			if a.AuthorID == user.ID {
				result = append(result, a)
			}
		}
		return result
	}

	for _, a := range alerts {
		categoryMatch := selection == models.SelectionAll || models.Selection(a.Category) == selection
		if categoryMatch && statusMatch(a.Status, showResolved) {
			result = append(result, a)
		}
	}
	return result
}

func statusMatch(status models.Status, showResolved bool) bool {
	if showResolved {
		return status == models.StatusResolved || status == models.StatusVerified
	}
	return status == models.StatusActive || status == models.StatusVerified
}

// WithinRadius оставляет алерты не дальше radiusKm от точки (граница включительно)
func WithinRadius(alerts []*models.Alert, lat, lng, radiusKm float64) []*models.Alert {
	result := make([]*models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if DistanceKm(lat, lng, a.Location.Latitude, a.Location.Longitude) <= radiusKm {
			result = append(result, a)
		}
	}
	return result
}

// DistanceKm - расстояние по формуле гаверсинусов
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
