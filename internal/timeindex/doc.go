// Package timeindex is the system's only clip metadata store: each clip's
// [start, end] interval is serialized into its filename and recovered from it.
//
// The grammar is
//
//	captured_video_<YYYY-MM-DD>_<hh-mm-ss>_<AM|PM>_to_<hh-mm-ss>_<AM|PM>.mp4
//
// with one-second resolution and a 12-hour clock. The end time shares the
// start's calendar date, so intervals crossing midnight are unrepresentable
// and rejected at encode time.
package timeindex
