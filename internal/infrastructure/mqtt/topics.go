package mqtt

import "fmt"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "babylog"

// Topics builds babylog MQTT topics under a common prefix.
//
//	topics := mqtt.Topics{Prefix: "babylog"}
//	topics.Activity("usr-1a2b3c4d", "bottle", "created")
//	// Returns: "babylog/activity/usr-1a2b3c4d/bottle/created"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Activity returns the topic a log change is published on.
//
// Example: babylog/activity/usr-1a2b3c4d/diaper/deleted
func (t Topics) Activity(ownerID, kind, action string) string {
	return fmt.Sprintf("%s/activity/%s/%s/%s", t.prefix(), ownerID, kind, action)
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: babylog/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.prefix())
}
