// Package api provides the HTTP REST API and WebSocket server for Hearth Core.
//
// It exposes device registry operations, command dispatch, schedule
// management, and real-time state updates to user interfaces.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
