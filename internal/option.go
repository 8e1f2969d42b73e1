package internal

// Option customizes the application before Run starts it.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the loaded configuration. Run refuses to start
// without one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
