// Package constants holds string values shared between configuration and the domain.
package constants

// Storage drivers accepted by storage.driver.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverBadger   = "badger"
)

// Environments accepted by env.env.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// StaleEndpointMarker appears in endpoints handed out by a browser whose push
// registration was revoked but is still cached client-side, typically after a
// VAPID key rotation.
const StaleEndpointMarker = "permanently-removed.invalid"

// PermanentlyRemovedMarker is how push services and resolvers describe an
// endpoint that will never accept another push.
const PermanentlyRemovedMarker = "permanently-removed"
