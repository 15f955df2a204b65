package transcode

// Package transcode wraps the ffmpeg CLI for the audio-only finalize step:
// extracting an mp3 from a downloaded audio stream while reporting progress
// parsed from ffmpeg's -progress output.
