package doh

// Config is passed to the New() constructor.
type Config struct {
	ServerURLs      []string // Mandatory. Tried in order with rotation on failure
	UseGetMethod    bool     // Instead of the default POST
	GeneratePadding bool     // RFC8467 query padding with zeroes
}
