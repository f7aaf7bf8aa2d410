package config

const (
	defaultDataDir          = "~/.local/share/phrasebook"
	defaultLogDir           = "~/.local/share/phrasebook/logs"
	defaultDatabaseName     = "phrases.db"
	defaultActivityLogName  = "activity_log.csv"
	defaultMinOverlapMillis = 100
	defaultSlackMillis      = 2000
	defaultUnmatchedMarker  = "[要確認]"
	defaultLayout           = LayoutDictionary
	defaultSearchLimit      = 5
	defaultSearchMaxLimit   = 10
	defaultServerBind       = "127.0.0.1:8501"
	defaultSessionHours     = 24
	defaultEnvFile          = ".env"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Output layouts understood by the pairs CSV writer.
const (
	LayoutDictionary = "dictionary"
	LayoutPairs      = "pairs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Align: Align{
			MinOverlapMillis: defaultMinOverlapMillis,
			SlackMillis:      defaultSlackMillis,
			UnmatchedMarker:  defaultUnmatchedMarker,
			Layout:           defaultLayout,
		},
		Search: Search{
			DefaultLimit: defaultSearchLimit,
			MaxLimit:     defaultSearchMaxLimit,
		},
		Server: Server{
			Bind:         defaultServerBind,
			SessionHours: defaultSessionHours,
			EnvFile:      defaultEnvFile,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
