// Package mqtt publishes babylog activity to an MQTT broker.
//
// The service only publishes. Every committed bottle or diaper change is
// sent to {prefix}/activity/{owner}/{kind}/{action} so that dashboards and
// home automation can react to it. A retained status message on
// {prefix}/system/status, backed by a Last Will, tells subscribers whether
// the API is up.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if errors.Is(err, mqtt.ErrDisabled) {
//	    // run without activity events
//	}
//	defer client.Close()
//
//	topic := client.Topics().Activity(ownerID, "bottle", "created")
//	err = client.Publish(topic, payload, 1, false)
package mqtt
