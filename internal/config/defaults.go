package config

const (
	defaultWorkspaceDir    = "~/.local/share/scenepack/workspace"
	defaultArchiveDir      = "~/.local/share/scenepack/archives"
	defaultLogDir          = "~/.local/share/scenepack/logs"
	defaultDatabasePath    = "~/.local/share/scenepack/scenepack.db"
	defaultDownloadWorkers = 10
	defaultDownloadTimeout = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultPackageVersion  = "1.0.0"
)

// defaultStripPrefixes covers the asset-sharing libraries whose local cache
// directories prefix otherwise identical asset paths. Stripping them keeps the
// storage path stable across hosts that installed the same asset differently.
var defaultStripPrefixes = []string{
	"moulinette/images/",
	"moulinette/sounds/",
	"the-forge-assets/",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			ArchiveDir:   defaultArchiveDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
		},
		Package: Package{
			Version: defaultPackageVersion,
		},
		Download: Download{
			Workers:        defaultDownloadWorkers,
			TimeoutSeconds: defaultDownloadTimeout,
		},
		Packs: Packs{
			StripPrefixes: append([]string(nil), defaultStripPrefixes...),
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
