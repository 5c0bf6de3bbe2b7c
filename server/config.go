package server

// Config is the HTTP server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// CORSOrigins is a comma separated allow-list for browser clients.
	// Empty allows every origin.
	CORSOrigins string
}
