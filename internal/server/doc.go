// Package server provides the HTTP request surface, middleware, and OAuth callback handling for dzx.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] runs in the order it was added: the first middleware sees the request first.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
// [NewRouter] assembles the full surface with [RequestID], [RequestLogger] and [Recoverer].
//
// # Playlist Endpoints
//
// [PlaylistHandler] serves /playlist. GET reads a playlist by link, POST validates a
// migration request and creates a playlist, DELETE removes one. Engine errors map to
// status codes in one place so every method reports failures the same way.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the authorization code callback flow. It validates the state parameter,
// exchanges the code through an [Exchanger], and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
