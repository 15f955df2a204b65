package model

// Package model defines the domain data used across the app: media items with
// their lifecycle state machine, playlists as selection sets, download options
// and batch summaries. Mutating methods enforce the legal state transitions;
// the presentation layer reads value snapshots only.
