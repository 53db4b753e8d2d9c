// Package mqtt provides MQTT connectivity for CakeBoard's remote panel.
//
// The board publishes device state and accepts switch commands over a
// broker so a panel on another machine can watch the LEDs and flip the
// switches:
//
//	CakeBoard ↔ MQTT broker ↔ remote panels, dashboards
//
// This package manages:
//   - Connection with auto-reconnect and subscription restore
//   - Last Will and Testament on cakeboard/system/status
//   - Publish and subscribe with QoS validation
//   - Topic builders for the cakeboard/ hierarchy
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        id, _ := mqtt.Topics{}.CommandDeviceID(topic)
//	        return handle(id, payload)
//	    })
//
// Handlers run on paho goroutines; they must hand work to the board
// through its signal bus rather than touching devices.
package mqtt
