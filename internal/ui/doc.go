// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a single profile screen over a [tasks.Profile]:
//  1. [LoadingView] : Fetch the user record and the catalog
//  2. [CatalogView] : Browse every movie, favorites starred
//  3. [FavoritesView] : Browse the reconciled favorites
//  4. [DetailView] : Show a movie with its genre and director
//  5. [ConfirmView] : Confirm profile deletion
//  6. [SignedOutView] : The session has ended
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Profile calls run as commands so the screen stays responsive; a toggle on a movie whose previous toggle
// has not finished is reported, not queued.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
