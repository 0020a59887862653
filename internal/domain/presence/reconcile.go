// Package presence derives which visitors are on site from their access events.
// It is pure: callers fetch events and the visitor directory, this package only
// decides.
package presence

import (
	"sort"
	"time"

	"github.com/target/totem-api/internal/domain/model"
)

// DefaultLookback is used when a non-positive window is requested.
const DefaultLookback = 48 * time.Hour

// Since returns the lower bound of the lookback window ending at now.
func Since(now time.Time, lookback time.Duration) time.Time {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return now.Add(-lookback)
}

// Reconcile returns the visitors whose most recent event is an entry.
//
// Events are grouped by visitor id and sorted newest first; among equal
// timestamps the event seen first in the input wins. Events without a visitor
// id and visitors missing from the directory are dropped. Output order is not
// significant.
func Reconcile(events []model.Access, visitors []model.Visitor) []model.PresentVisitor {
	directory := make(map[string]model.Visitor, len(visitors))
	for _, v := range visitors {
		if v.ID == "" {
			continue
		}
		directory[v.ID] = v
	}

	byVisitor := make(map[string][]model.Access)
	order := make([]string, 0)
	for _, ev := range events {
		if ev.VisitorID == "" {
			continue
		}
		if _, seen := byVisitor[ev.VisitorID]; !seen {
			order = append(order, ev.VisitorID)
		}
		byVisitor[ev.VisitorID] = append(byVisitor[ev.VisitorID], ev)
	}

	present := make([]model.PresentVisitor, 0, len(order))
	for _, id := range order {
		latest := Latest(byVisitor[id])
		if latest.Action != model.ActionEntry {
			continue
		}
		v, known := directory[id]
		if !known {
			continue
		}
		present = append(present, model.PresentVisitor{
			VisitorID:          v.ID,
			FirstName:          v.FirstName,
			LastName:           v.LastName,
			Company:            v.Company,
			EnteredAt:          latest.Timestamp,
			AccessPoint:        latest.AccessPoint,
			DestinationPath:    latest.DestinationPath,
			AppointmentContact: latest.AppointmentContact,
		})
	}
	return present
}

// Latest returns the most recent event of a single visitor. It sorts a copy so
// the caller's slice is left untouched.
func Latest(events []model.Access) model.Access {
	if len(events) == 0 {
		return model.Access{}
	}
	sorted := make([]model.Access, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time().After(sorted[j].Time())
	})
	return sorted[0]
}
