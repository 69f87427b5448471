// Package tlsroots provides TLS key pair management for deckshare.
//
// A Watcher loads the server certificate and key from the plugin's certs
// directory, serves them through tls.Config.GetCertificate and reloads them
// when the files change on disk (fsnotify). A failed reload keeps serving the
// previous pair.
package tlsroots
