// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks one playlist through a migration:
//  1. [InputView] : Paste a Deezer playlist link or id
//  2. [TrackListView] : Preview the normalized tracks
//  3. [ConfirmView] : Confirm creating the new playlist
//  4. [TransferView] : Follow progress (spinner, progress bar, current step)
//  5. [ResultView] : Share link and the tracks that could not be matched
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the engine; the final outcome arrives on a separate channel once the
// progress channel is closed, so the model is only ever mutated from Update.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
