package config

import "github.com/opsdeck/cheatsheets/constants"

// Default directories and file paths for cheats.
const (
	// DefaultConfigDir is the base directory for local state.
	DefaultConfigDir = ".cheats"
	// DefaultConfigPath is the config file looked up when --config is not given.
	DefaultConfigPath = constants.ConfigFileName
	// DefaultSQLiteDSN is the default data source name for SQLite storage.
	DefaultSQLiteDSN = DefaultConfigDir + "/cheats.db"
	// DefaultExportDir is where the filesystem blob store writes exports.
	DefaultExportDir = "public/static"
	// DefaultDebounceMillis coalesces editor save bursts.
	DefaultDebounceMillis = 250
	// DefaultCacheTTLSeconds bounds how long a rendered page is cached.
	DefaultCacheTTLSeconds = 600
	// DefaultTerminalWidth is the word wrap used by `cheats show`.
	DefaultTerminalWidth = 100
)
