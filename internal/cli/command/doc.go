// Package command defines the deckshare-server command line.
//
// The process takes positional arguments in the order the host plugin
// passes them:
//
//	deckshare-server [options] <base_dir> [port] <plugin_dir>
//
// Options and positional values override the environment and the optional
// configuration file. The command blocks until the idle watchdog stops the
// server, then exits with status 0.
package command
