// Package preview renders bounded JPEG thumbnails of shared images.
//
// Thumbnails are cached in memory, keyed by path, size and modification
// time, so an edited file is rendered again. Concurrent requests for the
// same file share one render, and the number of renders in progress at once
// is capped by the worker count.
package preview
