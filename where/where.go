// Package where resolves the per-user directories and files petflix reads and writes.
package where

import (
	"os"
	"path/filepath"

	"github.com/petflix/petflix/constant"
	"github.com/petflix/petflix/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "PETFLIX_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory, honoring PETFLIX_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the directory for log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Store is the durable cache tier file.
func Store() string {
	return filepath.Join(Cache(), "store.json")
}

// History is the playback progress file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Queries is the recent search keywords file.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// Pages remembers the last page shown per listing.
func Pages() string {
	return filepath.Join(Cache(), "pages.json")
}

// Synonyms is the optional user override of the alternate search terms table.
func Synonyms() string {
	return filepath.Join(Config(), "synonyms.json")
}
