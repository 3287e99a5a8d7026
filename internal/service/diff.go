package service

import (
	"github.com/google/uuid"
	"github.com/shenikar/community_alerts/internal/models"
)

// SnapshotDiff - какие алерты изменились между двумя снимками
type SnapshotDiff struct {
	Added    []uuid.UUID `json:"added"`
	Modified []uuid.UUID `json:"modified"`
	Removed  []uuid.UUID `json:"removed"`
}

// IsEmpty сообщает, что снимки совпадают
func (d SnapshotDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// SnapshotEvent - новый снимок вместе с разницей относительно предыдущего
type SnapshotEvent struct {
	Alerts  []*models.Alert
	Changes SnapshotDiff
}

// Diff сравнивает снимки по id и версии. Added и Modified идут в порядке next,
// Removed - в порядке prev.
func Diff(prev, next []*models.Alert) SnapshotDiff {
	prevVersions := make(map[uuid.UUID]int64, len(prev))
	for _, a := range prev {
		prevVersions[a.ID] = a.Version
	}

	diff := SnapshotDiff{
		Added:    []uuid.UUID{},
		Modified: []uuid.UUID{},
		Removed:  []uuid.UUID{},
	}
	seen := make(map[uuid.UUID]struct{}, len(next))
	for _, a := range next {
		seen[a.ID] = struct{}{}
		version, ok := prevVersions[a.ID]
		switch {
		case !ok:
			diff.Added = append(diff.Added, a.ID)
		case version != a.Version:
			diff.Modified = append(diff.Modified, a.ID)
		}
	}
	for _, a := range prev {
		if _, ok := seen[a.ID]; !ok {
			diff.Removed = append(diff.Removed, a.ID)
		}
	}
	return diff
}
