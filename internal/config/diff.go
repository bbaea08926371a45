package config

// ConfigDiff describes what changed between two configs. Only fields that
// are safe to apply without restarting the process are tracked — provider
// backend/model changes still require a restart since a [llmprovider.Router]
// is wired up once at startup.
type ConfigDiff struct {
	TuningChanged bool
	RecallChanged bool
	PromptsChanged bool
	LogLevelChanged bool
	NewLogLevel     string
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Tuning != new.Tuning {
		d.TuningChanged = true
	}
	if old.Recall != new.Recall {
		d.RecallChanged = true
	}
	if old.Prompts != new.Prompts {
		d.PromptsChanged = true
	}

	return d
}
