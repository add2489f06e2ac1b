// Package connection carries protocol frames between clients and the box.
//
// Every transport is wrapped as a Conn: a background reader splits incoming
// bytes into newline-terminated frames and queues them, so the box loop can
// poll without blocking. Responses are buffered and flushed once per frame.
//
// Transports:
//   - TCP: Listener accepts clients and adds each to the Pool
//   - Serial: OpenSerial wraps a character device (or any file)
//   - MQTT: NewMQTTConn turns the command topic into frames and publishes
//     responses on the response topic
//   - Buffer: BufferConn is an in-memory connection for tests and tools
//
// Pool holds the live connections and implements box.Pool.
package connection
