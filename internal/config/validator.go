package config

// Validator validates a Config and fills in any defaults a Builder left
// unset. Current policy permits an empty roots list (an engine with no
// roots simply indexes nothing); it rejects a nil tokenizer, file filter or
// logger, and a negative watch debounce.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults checks cfg and applies smart defaults for any
// zero-valued field a caller might have produced by hand rather than
// through a Builder.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.tokenizer == nil {
		return &ConfigError{Field: "tokenizer", Reason: "must not be nil"}
	}
	if cfg.fileFilter == nil {
		return &ConfigError{Field: "fileFilter", Reason: "must not be nil"}
	}
	if cfg.busBufferSize <= 0 {
		cfg.busBufferSize = 256
	}
	if cfg.watchDebounce < 0 {
		return &ConfigError{Field: "watchDebounce", Reason: "must not be negative"}
	}
	if cfg.logger == nil {
		return &ConfigError{Field: "logger", Reason: "must not be nil"}
	}
	return nil
}

// ConfigError reports a ConfigurationFault: an illegal builder state that
// cannot be defaulted away.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Field + ": " + e.Reason
}
