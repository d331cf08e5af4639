package interfaces

import "market-simulator/src/models"

// -----------------------------------------------------------------------------
// IEventSink receives events bound for every connected websocket client.
// Implementations never block the caller, slow consumers lose messages.
// -----------------------------------------------------------------------------

type IEventSink interface {

	// BroadcastEvent fans the event out to all connected clients
	BroadcastEvent(event *models.MEvent)
}
