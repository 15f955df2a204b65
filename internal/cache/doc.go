package cache

// Package cache provides the session-scoped metadata cache shared by download
// workers. Entries expire after a fixed TTL and are purged lazily on lookup,
// explicitly through ClearExpired, or periodically by an optional janitor.
