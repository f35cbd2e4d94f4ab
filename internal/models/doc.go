// Package models defines the values that flow through a dzx playlist migration.
//
// Everything here is a plain data transfer object created and discarded within a single request:
//
//   - [Track] : canonical track descriptor (title, artist, contributors, album, duration)
//   - [Playlist] : normalized playlist with its ordered tracks
//   - [PlaylistMeta] : name and description for a playlist being created
//   - [MatchResult] : catalog candidate chosen for one source track
//   - [MigrationOutcome] : share link plus the tracks that could not be matched
//   - [ValidationResult] : field-addressable validation errors for a migration request
//
// Track equality is never structural. Whether two tracks are "the same" is decided by the scorer in
// the tasks package.
package models
