// Package app wires configuration, services, handlers and middleware into a
// runnable HTTP application. It owns the server lifecycle, including graceful
// shutdown of the WebSocket hub.
package app
