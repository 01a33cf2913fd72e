package engine

// Config holds orchestration settings for the engine.
type Config struct {
	// MaxRounds caps the number of participant turns after the kickoff
	// message. Zero or negative means the default of 10.
	MaxRounds int

	// DefaultAnalystModel is used when the request does not name an
	// analyst model.
	DefaultAnalystModel string

	// DefaultCoderModel is used when the request does not name a coder
	// model.
	DefaultCoderModel string
}

// maxRounds returns the effective round limit, defaulting to 10.
func (c Config) maxRounds() int {
	if c.MaxRounds <= 0 {
		return 10
	}
	return c.MaxRounds
}
