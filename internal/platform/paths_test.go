package platform

import (
	"path/filepath"
	"testing"
)

// TestPathsForPerOS verifies which environment overrides each OS honors.
func TestPathsForPerOS(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		cfgBase    string
		dataBase   string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			cfgBase:    "/fallback/config",
			dataBase:   "/fallback/data",
			wantConfig: "/xdg/config",
			wantData:   "/xdg/data",
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			cfgBase:    "/home/me/.config",
			dataBase:   "/home/me/.local/share",
			wantConfig: "/home/me/.config",
			wantData:   "/home/me/.local/share",
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			cfgBase:    `C:\fallback\config`,
			dataBase:   `C:\fallback\data`,
			wantConfig: `C:\Roaming`,
			wantData:   `C:\Local`,
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			cfgBase:    "/Users/me/Library/Application Support",
			dataBase:   "/Users/me/Library/Application Support",
			wantConfig: "/Users/me/Library/Application Support",
			wantData:   "/Users/me/Library/Application Support",
		},
		{
			name:       "unknown os",
			goos:       "freebsd",
			env:        nil,
			cfgBase:    "/cfg",
			dataBase:   "/data",
			wantConfig: "/cfg",
			wantData:   "/data",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, tc.env, tc.cfgBase, tc.dataBase, "stack")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			if want := filepath.Join(tc.wantConfig, "stack", "config.toml"); p.ConfigPath != want {
				t.Fatalf("config path = %q, want %q", p.ConfigPath, want)
			}
			if want := filepath.Join(tc.wantData, "stack"); p.DataDir != want {
				t.Fatalf("data dir = %q, want %q", p.DataDir, want)
			}
			if want := filepath.Join(tc.wantData, "stack", "stack.db"); p.DBPath != want {
				t.Fatalf("db path = %q, want %q", p.DBPath, want)
			}
		})
	}
}

// TestPathsForEmptyDirsFails verifies missing base dirs are rejected.
func TestPathsForEmptyDirsFails(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "stack"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
}

// TestDefaultPathsSmoke resolves paths for the running OS.
func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}

// TestDefaultPathsWithOptionsDevMode verifies the -dev suffix reaches both dirs.
func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "stack", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "stack-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "stack-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}

// TestAppNameDefaultsAndDevSuffix verifies app name resolution.
func TestAppNameDefaultsAndDevSuffix(t *testing.T) {
	cases := []struct {
		opts Options
		want string
	}{
		{Options{}, "stack"},
		{Options{AppName: "  "}, "stack"},
		{Options{AppName: "work"}, "work"},
		{Options{AppName: "work", DevMode: true}, "work-dev"},
		{Options{DevMode: true}, "stack-dev"},
	}
	for _, tc := range cases {
		if got := AppName(tc.opts); got != tc.want {
			t.Fatalf("AppName(%#v) = %q, want %q", tc.opts, got, tc.want)
		}
	}
}

// TestPathsForRecordsAppName verifies the resolved app name is kept on Paths.
func TestPathsForRecordsAppName(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{"XDG_DATA_HOME": "  "}, "/cfg", "/data", " stack ")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if p.AppName != "stack" || p.DataDir != filepath.Join("/data", "stack") {
		t.Fatalf("unexpected paths %#v", p)
	}
	if _, err := PathsFor("linux", nil, "/cfg", "/data", " "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}
