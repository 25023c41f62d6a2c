// Package availability decides whether a date range is free on a property.
//
// Intervals are closed on both ends: a booking that ends on the day another
// starts is a conflict. Only active bookings take part.
package availability

import (
	"context"
	"time"

	"spacelink/pkg/model"
)

// Overlaps applies the conflict predicate for a candidate [from, to] against
// an existing [existingFrom, existingTo]. Inputs are used as given; ordering
// from before to is the caller's job.
func Overlaps(existingFrom, existingTo, from, to time.Time) bool {
	startInside := !from.Before(existingFrom) && !from.After(existingTo)
	endInside := !to.Before(existingFrom) && !to.After(existingTo)
	contains := !existingFrom.Before(from) && !existingTo.After(to)
	return startInside || endInside || contains
}

// Conflicts returns the active bookings in existing that clash with
// [from, to], skipping excludeID when it is set.
func Conflicts(existing []*model.Booking, from, to time.Time, excludeID string) []*model.Booking {
	var conflicts []*model.Booking
	for _, b := range existing {
		if b.Status != model.BookingStatusActive {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if Overlaps(b.FromDate, b.ToDate, from, to) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// Finder narrows the scan to candidate bookings; the exact predicate is
// applied in memory by Conflicts.
type Finder interface {
	FindActiveInRange(ctx context.Context, propertyID string, from, to time.Time, excludeID string) ([]*model.Booking, error)
}

type Detector struct {
	finder Finder
}

func NewDetector(finder Finder) *Detector {
	return &Detector{finder: finder}
}

func (d *Detector) HasConflict(ctx context.Context, propertyID string, from, to time.Time, excludeID string) (bool, error) {
	candidates, err := d.finder.FindActiveInRange(ctx, propertyID, from, to, excludeID)
	if err != nil {
		return false, err
	}
	return len(Conflicts(candidates, from, to, excludeID)) > 0, nil
}
