package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories when no override is given.
const DefaultAppName = "stack"

// Paths holds the resolved per-user locations for one app name.
type Paths struct {
	AppName    string
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options selects the app name and dev-mode suffix.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPaths resolves paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths from the running OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := AppName(opts)

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	switch runtime.GOOS {
	case "linux":
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", homeErr)
		}
		dataDir = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataDir = v
		}
	}

	env := map[string]string{}
	for _, key := range []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "APPDATA", "LOCALAPPDATA"} {
		env[key] = os.Getenv(key)
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// AppName returns the effective directory name for opts.
func AppName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}
	return name
}

// PathsFor resolves paths for goos without touching the process environment.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase, dataBase := baseDirs(goos, env, userConfigDir, userDataDir)
	appDataDir := filepath.Join(dataBase, appName)
	return Paths{
		AppName:    appName,
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    appDataDir,
		DBPath:     filepath.Join(appDataDir, appName+".db"),
	}, nil
}

// baseDirs applies the per-OS environment overrides to the user base dirs.
func baseDirs(goos string, env map[string]string, configBase, dataBase string) (string, string) {
	var configKey, dataKey string
	switch goos {
	case "linux":
		configKey, dataKey = "XDG_CONFIG_HOME", "XDG_DATA_HOME"
	case "windows":
		configKey, dataKey = "APPDATA", "LOCALAPPDATA"
	default:
		// macOS and others keep the os.UserConfigDir defaults.
		return configBase, dataBase
	}
	if v := strings.TrimSpace(env[configKey]); v != "" {
		configBase = v
	}
	if v := strings.TrimSpace(env[dataKey]); v != "" {
		dataBase = v
	}
	return configBase, dataBase
}
