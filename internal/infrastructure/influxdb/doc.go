// Package influxdb writes babylog care metrics to InfluxDB.
//
// Each bottle becomes a "feeding" point with an amount_ml field and each
// diaper becomes a "diaper_change" point, both tagged with the owner. The
// points are timestamped with the log's own date and time so that charts
// show when the care happened rather than when it was entered.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteFeeding("usr-1a2b3c4d", "Similac", 120, at)
//
// Writes are queued and batched according to batch_size and flush_interval.
// Close sends whatever is still queued. Rejected batches are counted in
// Stats and reported through SetOnError.
package influxdb
