// Package ui implements the interactive result picker TUI.
//
// The picker shows aggregated search results in a [list.Model], lets the
// user confirm a track, and enqueues it on the wishlist. Built on
// [bubbletea]'s Elm-style update loop.
package ui
