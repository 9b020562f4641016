// Package media wraps the external ffprobe/ffmpeg collaborators used by the
// retrieval path: a duration probe and a lossless stream-copy trim.
package media
