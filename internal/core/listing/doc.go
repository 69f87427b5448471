// Package listing resolves browse requests into directory entries.
//
// A listing has exactly one hard failure mode: the target cannot be opened as
// a directory. Every per-entry problem (a rename race, a permission error on a
// single child, a name that is not valid UTF-8) drops that entry, is logged and
// is reported in Listing.Failures, and the rest of the listing still succeeds.
//
// The target is formed by joining the share root and the client supplied
// relative path with a single separator. The relative path is not cleaned, so
// ".." segments reach the filesystem unless RejectTraversal is enabled.
//
// Dot-prefixed entries are listed unless HideDotfiles is set; a single call
// can override that with ShowHidden. An entry removed by the filter is
// counted in Listing.Hidden and is not a failure.
package listing
