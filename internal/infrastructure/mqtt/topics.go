package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the CakeBoard hierarchy.
//
//	cakeboard/command/{device_id}   host → board (switch commands)
//	cakeboard/state/{device_id}     board → host (retained cell state)
//	cakeboard/system/status         online/offline, also the LWT
const (
	TopicPrefix        = "cakeboard"
	TopicPrefixCommand = TopicPrefix + "/command"
	TopicPrefixState   = TopicPrefix + "/state"
	TopicPrefixSystem  = TopicPrefix + "/system"
)

// Topics provides builders for CakeBoard MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.DeviceState("sw") // "cakeboard/state/sw"
type Topics struct{}

// DeviceCommand returns the topic commands for a device arrive on.
//
// Example: cakeboard/command/sw
func (Topics) DeviceCommand(deviceID string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixCommand, deviceID)
}

// DeviceState returns the retained state topic for a device.
//
// Example: cakeboard/state/led
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixState, deviceID)
}

// SystemStatus returns the system status topic.
//
// Example: cakeboard/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// PacerStats returns the topic pacer measurements are published on.
//
// Example: cakeboard/system/pacer
func (Topics) PacerStats() string {
	return TopicPrefixSystem + "/pacer"
}

// AllDeviceCommands returns a pattern matching every device command topic.
//
// Pattern: cakeboard/command/+
func (Topics) AllDeviceCommands() string {
	return TopicPrefixCommand + "/+"
}

// CommandDeviceID extracts the device id from a command topic.
// It reports false when topic is not a single-level command topic.
func (Topics) CommandDeviceID(topic string) (string, bool) {
	id, ok := strings.CutPrefix(topic, TopicPrefixCommand+"/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
