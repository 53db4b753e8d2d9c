// Package remote bridges the board to an MQTT broker so a remote panel can
// read lamps and flip levers.
//
// Inbound, commands on cakeboard/command/{device_id} are decoded and queued
// on the board's signal bus:
//
//	{"command": "set",    "row": 0, "col": 3, "on": true}
//	{"command": "toggle", "row": 0, "col": 3}
//	{"command": "word",   "row": 0, "value": 8}
//	{"command": "reset"}
//
// Outbound, the Bridge observes board snapshots and publishes each
// device's state, retained, on cakeboard/state/{device_id} whenever it
// changes, plus pacer measurements on cakeboard/system/pacer.
//
// Commands arrive on paho goroutines; the only thing they touch is the
// signal bus, which is safe for concurrent senders.
package remote
