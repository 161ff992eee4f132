// Package ranking detects and ranks hot places from geotagged observations and
// search events.
//
// A ranking pass is a pure function of its inputs and the reference instant:
//
//	places := ranking.ComputeHotPlaces(now, observations, searches, ranking.DefaultOptions())
//
// Observations are grouped by exact place key. Each group gets three raw signals
// (density, activity, interest), each signal is normalized by its maximum across the
// groups of the same pass, and the weighted sum becomes the composite score. Because
// normalization is relative to the pass, callers that shard work must never split one
// place key across two passes.
//
// Observations with a zero Timestamp keep their group membership but never enter a
// time-windowed sum.
package ranking
