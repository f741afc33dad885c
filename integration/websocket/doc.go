// Package websocket fans carousel messages out to connected WebSocket clients.
//
// Hub is both an http.Handler that upgrades incoming requests and an
// mp2c.Consumer that writes every delivered message as a binary frame to every
// connected client:
//
//	hub := websocket.NewHub(websocket.WithAllowAnyOrigin(), websocket.WithLogger(log))
//	defer hub.Close()
//
//	http.Handle("/stream", hub)
//	c, err := mp2c.New([]mp2c.Consumer{hub, audit})
//
// A client whose write fails or times out is disconnected; the others keep
// receiving. Incoming frames are read and discarded so control frames
// (ping, close) are processed.
package websocket
