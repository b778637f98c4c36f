// Package transport bridges the engine to the outside world: an MQTT
// subscription, a WebSocket client connection, or a cron schedule,
// each turning an external event into an Emit call against a molecule
// the caller already declared and activated. These bridges are
// optional collaborators, not part of the core contract — a
// JoinDefinition never depends on this package.
package transport
