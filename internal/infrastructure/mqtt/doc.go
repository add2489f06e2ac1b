// Package mqtt provides MQTT client connectivity for BrewLogic Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS guarantees
//   - Topic subscriptions restored after reconnect
//   - Last Will and Testament (LWT) on the device status topic
//
// # Architecture
//
// MQTT is one of the byte-stream transports for the command protocol. Each
// request line published on brewlogic/{device}/command is handed to the
// connection pool, and every response line is published on
// brewlogic/{device}/response:
//
//	client ↔ MQTT Broker ↔ BrewLogic Core (connection pool → box)
//
// # Security Considerations
//
//   - TLS should be enabled for brokers outside the local network
//   - Anyone allowed to publish on the command topic controls the brewery
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().Command(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("request: %s", payload)
//	        return nil
//	    })
package mqtt
