// Package app wires deckshare together and owns its lifecycle.
//
// Run builds the activity clock, directory lister, HTTP handlers and HTTPS
// server, starts the serving task and then hands control to the idle
// watchdog. The watchdog decides when the process is done: after the idle
// timeout, when the serving task ends on its own (for example because the
// TLS key pair could not be loaded), or when the parent context is canceled
// by a signal. Cleanup hooks run once the watchdog returns.
package app
