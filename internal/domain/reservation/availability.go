package reservation

import "github.com/google/uuid"

// FirstConflict returns the first non-terminal reservation whose interval
// strictly overlaps the requested one, skipping excludeID (used when moving
// an existing reservation). Callers feed it the day-bucketed superset from
// the store; the exact half-open comparison happens here.
func FirstConflict(requested Interval, existing []*Reservation, excludeID *uuid.UUID) *Reservation {
	for _, other := range existing {
		if other.IsTerminal() {
			continue
		}
		if excludeID != nil && other.ID() == *excludeID {
			continue
		}
		if requested.Overlaps(other.Interval()) {
			return other
		}
	}
	return nil
}
