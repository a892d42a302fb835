// Package activity forwards committed log changes to the optional
// integrations: MQTT for live activity feeds and InfluxDB for care metrics.
//
// Both types implement logbook.Observer. They never fail a request; a
// broken integration is logged and the API keeps working.
package activity
