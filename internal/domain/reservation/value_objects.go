package reservation

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInterval = errors.New("interval end must be after start")

// Interval is a half-open time range [start, end). Two intervals that merely
// touch (a.end == b.start) do not overlap, so back-to-back reservations are
// legal.
type Interval struct {
	start time.Time
	end   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{start: start.UTC(), end: end.UTC()}, nil
}

func (iv Interval) Start() time.Time {
	return iv.start
}

func (iv Interval) End() time.Time {
	return iv.end
}

func (iv Interval) Duration() time.Duration {
	return iv.end.Sub(iv.start)
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.start.Before(other.end) && iv.end.After(other.start)
}

// DayBucket widens the interval to whole UTC days. Range queries use the
// widened bounds so that timezone truncation in the store can never hide a
// conflicting row; the exact half-open check runs in memory afterwards.
func (iv Interval) DayBucket() (time.Time, time.Time) {
	from := iv.start.Truncate(24 * time.Hour)
	to := iv.end.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return from, to
}

func (iv Interval) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", iv.start.Format(time.RFC3339), iv.end.Format(time.RFC3339))
}

func (iv Interval) IsZero() bool {
	return iv.start.IsZero() && iv.end.IsZero()
}

// Annotation is a single append-only note entry. Notes are never rewritten;
// cancellation reasons and staff remarks accumulate in order.
type Annotation struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

type NoteLog struct {
	entries []Annotation
}

func NewNoteLog(entries ...Annotation) NoteLog {
	return NoteLog{entries: entries}
}

func (n NoteLog) Append(at time.Time, text string) NoteLog {
	appended := make([]Annotation, len(n.entries), len(n.entries)+1)
	copy(appended, n.entries)
	return NoteLog{entries: append(appended, Annotation{At: at, Text: text})}
}

func (n NoteLog) Entries() []Annotation {
	out := make([]Annotation, len(n.entries))
	copy(out, n.entries)
	return out
}

func (n NoteLog) Len() int {
	return len(n.entries)
}

func (n NoteLog) IsEmpty() bool {
	return len(n.entries) == 0
}
