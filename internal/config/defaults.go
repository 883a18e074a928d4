package config

// Defaults returns the default configuration. All paths are already
// expanded; "~/" literals must never leak to callers that mkdir them.
func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			Workspace: ExpandPath("~/.grabbot"),
			LogLevel:  "info",
		},
		Session: SessionConfig{
			AuthDBPath:   ExpandPath("~/.grabbot/session.db"),
			CredsDBPath:  ExpandPath("~/.grabbot/creds.db"),
			PairCodeFile: ExpandPath("~/.grabbot/pair-code.txt"),
		},
		Status: StatusConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    3000,
		},
		Downloads: DownloadsConfig{
			Dir:                ExpandPath("~/.grabbot/tmp"),
			MenuLimit:          5,
			SelectDelaySeconds: 3,
		},
	}
}
