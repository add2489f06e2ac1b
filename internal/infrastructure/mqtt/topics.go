package mqtt

import "fmt"

// TopicPrefix is the root of every BrewLogic topic.
const TopicPrefix = "brewlogic"

// Topics builds the topics of one controller. Every topic is scoped by the
// device ID so several controllers can share a broker:
//
//	topics := mqtt.Topics{DeviceID: "fermenter-1"}
//	topics.Command() // "brewlogic/fermenter-1/command"
type Topics struct {
	DeviceID string
}

// Command returns the topic carrying protocol request lines to the controller.
//
// Example: brewlogic/fermenter-1/command
func (t Topics) Command() string {
	return fmt.Sprintf("%s/%s/command", TopicPrefix, t.DeviceID)
}

// Response returns the topic carrying protocol response lines and
// announcements from the controller.
//
// Example: brewlogic/fermenter-1/response
func (t Topics) Response() string {
	return fmt.Sprintf("%s/%s/response", TopicPrefix, t.DeviceID)
}

// Status returns the retained online/offline topic, also used for the LWT.
//
// Example: brewlogic/fermenter-1/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, t.DeviceID)
}
