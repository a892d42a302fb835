package activity

import (
	"context"
	"time"

	"github.com/nerrad567/babylog/internal/logbook"
)

// MetricsWriter is the write side of the InfluxDB client.
type MetricsWriter interface {
	WriteFeeding(ownerID, brand string, amount int, at time.Time)
	WriteDiaperChange(ownerID, soilType string, at time.Time)
}

// Recorder turns newly created logs into time-series points. Updates and
// deletions are not replayed into the series.
type Recorder struct {
	writer MetricsWriter
	loc    *time.Location
}

// NewRecorder creates a Recorder. Log dates and times are interpreted in loc,
// or UTC when loc is nil.
func NewRecorder(writer MetricsWriter, loc *time.Location) *Recorder {
	if loc == nil {
		loc = time.UTC
	}
	return &Recorder{writer: writer, loc: loc}
}

// Observe writes a point for created bottles and diapers.
func (r *Recorder) Observe(_ context.Context, event logbook.Event) {
	if event.Action != logbook.ActionCreated {
		return
	}

	switch rec := event.Record.(type) {
	case *logbook.Bottle:
		r.writer.WriteFeeding(rec.OwnerID, rec.Brand, rec.Amount, r.occurredAt(&rec.Entry, event.At))
	case *logbook.Diaper:
		r.writer.WriteDiaperChange(rec.OwnerID, rec.SoilType, r.occurredAt(&rec.Entry, event.At))
	}
}

// occurredAt returns the moment the care happened, falling back to the
// commit time when the stored date and time do not parse.
func (r *Recorder) occurredAt(e *logbook.Entry, fallback time.Time) time.Time {
	t, err := time.ParseInLocation(logbook.DateLayout+" "+logbook.TimeLayout, e.Date+" "+e.Time, r.loc)
	if err != nil {
		return fallback
	}
	return t
}
