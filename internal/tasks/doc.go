// Package tasks matches tracks against a music catalog and migrates playlists into it, with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines the operations:
//
//  1. [Engine.Read] : Fetch and normalize a catalog playlist
//     - Parses the playlist id from a link or bare id
//     - Fetches every member track with bounded concurrency
//     - Drops tracks that are no longer available
//
//  2. [Engine.Migrate] : Build a new playlist from track descriptors
//     - Searches the catalog for every track ([Engine.FindMatch])
//     - Creates the playlist, sets its description, adds matches in source order
//     - Returns the share link and the tracks that could not be matched
//
//  3. [Engine.Copy] : Read then Migrate
//
//  4. [Engine.Delete] : Remove a playlist
//
// # Matching
//
// A [Scorer] rates each search result against the source track (title and artist 2, album 1,
// contributor set 1, duration 1). Results at or above the threshold are acceptable. The policy
// decides between the first acceptable result in relevance order ([FirstAcceptable]) and the best
// one ([BestScore]).
//
// # Failure Handling
//
// Once the playlist is created every later failure deletes it again before the error is returned.
// The delete runs on a context detached from the caller's cancellation. When it fails too, both
// errors are returned joined, the second wrapping [shared.ErrRollbackFailed].
//
// # Progress Reporting
//
// All operations report progress over a caller-supplied channel.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
