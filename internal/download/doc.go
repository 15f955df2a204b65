package download

// Package download implements the batch pipeline: a coordinator that runs a
// fixed pool of workers over the selected items of a playlist, and the item
// worker that resolves metadata, fetches media and reports state transitions.
// All item transitions, the finished counter and presenter notifications are
// serialized by the coordinator's lock.
