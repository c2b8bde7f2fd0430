package main

import (
	"os"
	"path/filepath"
	"testing"
)

// resetFlags restores global flag state after each test.
func resetFlags(t *testing.T) {
	t.Helper()
	orig := struct{ url, key, fmt string }{flagURL, flagKey, flagFmt}
	t.Cleanup(func() {
		flagURL = orig.url
		flagKey = orig.key
		flagFmt = orig.fmt
	})
}

// unsetEnv temporarily unsets an environment variable and restores it on cleanup.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, exists := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if exists {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

// setEnv temporarily sets an environment variable and restores it on cleanup.
func setEnv(t *testing.T, key, val string) {
	t.Helper()
	prev, exists := os.LookupEnv(key)
	os.Setenv(key, val)
	t.Cleanup(func() {
		if exists {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestResolveConfig_EnvURL(t *testing.T) {
	resetFlags(t)
	unsetEnv(t, "LINKMIRROR_API_KEY")
	setEnv(t, "LINKMIRROR_URL", "http://env-server:9090")

	// Point HOME at a temp dir so there's no config file to interfere.
	setEnv(t, "HOME", t.TempDir())

	flagURL = defaultURL
	flagKey = ""
	resolveConfig()

	if flagURL != "http://env-server:9090" {
		t.Errorf("flagURL: got %q, want %q", flagURL, "http://env-server:9090")
	}
}

func TestResolveConfig_EnvKey(t *testing.T) {
	resetFlags(t)
	unsetEnv(t, "LINKMIRROR_URL")
	setEnv(t, "LINKMIRROR_API_KEY", "secret-key-from-env")

	setEnv(t, "HOME", t.TempDir())

	flagURL = defaultURL
	flagKey = ""
	resolveConfig()

	if flagKey != "secret-key-from-env" {
		t.Errorf("flagKey: got %q, want %q", flagKey, "secret-key-from-env")
	}
}

func TestResolveConfig_FlagTakesPrecedenceOverEnv(t *testing.T) {
	resetFlags(t)
	setEnv(t, "LINKMIRROR_URL", "http://env-server:9090")
	setEnv(t, "HOME", t.TempDir())

	flagURL = "http://flag-server:7070"
	resolveConfig()

	if flagURL != "http://flag-server:7070" {
		t.Errorf("flagURL: got %q, want %q", flagURL, "http://flag-server:7070")
	}
}

func TestResolveConfig_ProfileFile(t *testing.T) {
	resetFlags(t)
	unsetEnv(t, "LINKMIRROR_URL")
	unsetEnv(t, "LINKMIRROR_API_KEY")

	tmp := t.TempDir()
	setEnv(t, "HOME", tmp)

	cfgDir := filepath.Join(tmp, ".linkmirror")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := []byte(`
active_profile: staging
profiles:
  default:
    url: http://default:8085
    api_key: default-key
  staging:
    url: http://staging:8085
    api_key: staging-key
`)
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), cfg, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flagURL = defaultURL
	flagKey = ""
	resolveConfig()

	if flagURL != "http://staging:8085" {
		t.Errorf("flagURL: got %q, want staging profile URL", flagURL)
	}
	if flagKey != "staging-key" {
		t.Errorf("flagKey: got %q, want staging profile key", flagKey)
	}
}
