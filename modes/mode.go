package modes

type Mode uint8

const (
	ModeProduction Mode = iota + 1
	// tests and embedded use, no config file discovery and no journal
	ModeDevelopment
)

func (m Mode) String() string {
	switch m {
	case ModeProduction:
		return "production"
	case ModeDevelopment:
		return "development"
	}
	return "unknown"
}
