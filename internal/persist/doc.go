// Package persist keeps one authoritative game snapshot across the local
// store and the remote store.
//
// Saving always writes locally first. The remote copy is written only when
// forced, when the snapshot carries significant unsaved changes, or when it
// holds prestige progress. Loading reconciles the two copies by
// last-writer-wins on lastSaved and writes the winner back to the loser.
//
// Remote failures never fail a save or a load. They are reported as a
// *RemoteError alongside a successful local result so the caller can show
// a dismissible notice.
package persist
