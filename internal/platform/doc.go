package platform

// Package platform contains the YouTube integration and OS glue: metadata
// resolution and stream fetching via kkdai/youtube, playlist listing via
// ytget/ytdlp, URL validation, and filesystem helpers for output files and
// the system file manager.
