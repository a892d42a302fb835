package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by babylog.
const (
	MeasurementFeeding      = "feeding"
	MeasurementDiaperChange = "diaper_change"
)

// WriteFeeding records one bottle feed of amount millilitres, tagged with
// the owner and the formula brand.
func (c *Client) WriteFeeding(ownerID, brand string, amount int, at time.Time) {
	c.writePoint(write.NewPointWithMeasurement(MeasurementFeeding).
		AddTag("owner_id", ownerID).
		AddTag("brand", brand).
		AddField("amount_ml", amount).
		SetTime(at))
}

// WriteDiaperChange records one diaper change. The count field lets
// dashboards sum changes per soil type over a window.
func (c *Client) WriteDiaperChange(ownerID, soilType string, at time.Time) {
	c.writePoint(write.NewPointWithMeasurement(MeasurementDiaperChange).
		AddTag("owner_id", ownerID).
		AddTag("soil_type", soilType).
		AddField("count", 1).
		SetTime(at))
}
