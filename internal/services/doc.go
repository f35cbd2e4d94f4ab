// Package services defines the [Catalog] interface the migration engine drives and implements it for Deezer.
//
// # Deezer Implementation
//
// [DeezerService] talks to the public Deezer API (https://api.deezer.com). Reads are anonymous;
// writes (create, describe, add tracks, delete) need a user access token obtained with the OAuth
// code flow ([DeezerService.GetAuthURL], [DeezerService.Exchange]) and sent as the access_token
// query parameter.
//
// Every request waits on a [rate.Limiter] sized from the [catalog] config section and uses an
// [http.Client] with the configured timeout. Nothing is retried.
//
// # Error Handling
//
// Deezer reports failures as HTTP 200 with an {"error": {...}} body. Services map them onto the
// shared sentinels:
//   - code 800 : [shared.ErrPlaylistNotFound] or [shared.ErrTrackNotFound]
//   - code 300 : [shared.ErrTokenExpired]
//   - codes 200, 901 : [shared.ErrNotAuthenticated]
//   - codes 4, 700 : [shared.ErrServiceUnavailable]
//   - anything else, and non-2xx statuses : [shared.ErrAPIRequest]
//
// Fetches are the exception: a missing playlist or track is returned as a payload with Error set
// so that readers can skip it.
//
// # Raw Requests
//
// [APIService] performs unauthenticated or token-bearing GETs against the catalog and returns the
// raw response, for the `dzx api` debugging commands.
package services
