package tracking

import (
	"time"

	"github.com/bapt252/commitment-tracking/src/domain/shared"
)

// ConsentRecord is one persisted consent decision for a category.
type ConsentRecord struct {
	Granted   bool      `json:"granted"`
	Timestamp time.Time `json:"timestamp"`
}

// ConsentSet holds the persisted decisions keyed by category. It is the JSON
// shape stored under the `{storageKey}_consents` durable storage key.
type ConsentSet map[shared.ConsentCategory]ConsentRecord

// Granted reports whether the category has an explicit granted=true record.
// Absent records count as denied (fail closed).
func (c ConsentSet) Granted(category shared.ConsentCategory) bool {
	rec, ok := c[category]
	return ok && rec.Granted
}

// Missing returns the subset of categories without a granted=true record,
// in the order given.
func (c ConsentSet) Missing(categories []shared.ConsentCategory) []shared.ConsentCategory {
	var missing []shared.ConsentCategory
	for _, cat := range categories {
		if !c.Granted(cat) {
			missing = append(missing, cat)
		}
	}
	return missing
}
