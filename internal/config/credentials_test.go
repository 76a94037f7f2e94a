package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCredentialStoreCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")

	store, err := LoadCredentialStore(path)
	if err != nil {
		t.Fatalf("LoadCredentialStore failed: %v", err)
	}

	if store.HasUsername() {
		t.Error("Expected no username on first run")
	}

	creds := store.Credentials()
	if creds.Domain != DefaultDomain {
		t.Errorf("Expected domain %s, got %s", DefaultDomain, creds.Domain)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Credentials file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[main]", "[profile]", "first_name", "domain"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %q in credentials file:\n%s", want, data)
		}
	}
}

func TestSetCredentialsPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")

	store, err := LoadCredentialStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetCredentials("shopper@example.com", "s3cret!"); err != nil {
		t.Fatalf("SetCredentials failed: %v", err)
	}

	reloaded, err := LoadCredentialStore(path)
	if err != nil {
		t.Fatal(err)
	}

	creds := reloaded.Credentials()
	if creds.Username != "shopper@example.com" {
		t.Errorf("Expected username to persist, got %q", creds.Username)
	}
	if creds.Password != "s3cret!" {
		t.Errorf("Expected password to persist, got %q", creds.Password)
	}
	if !reloaded.HasUsername() {
		t.Error("Expected HasUsername after SetCredentials")
	}
}

func TestCredentialStoreReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	content := "[main]\nusername = a@b.com\npassword = pw\ndomain =\n\n[profile]\nfirst_name = Ann\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := LoadCredentialStore(path)
	if err != nil {
		t.Fatalf("LoadCredentialStore failed: %v", err)
	}

	if store.FirstName() != "Ann" {
		t.Errorf("Expected first name Ann, got %q", store.FirstName())
	}
	if store.Credentials().Domain != DefaultDomain {
		t.Errorf("Expected empty domain to fall back to %s", DefaultDomain)
	}
}

func TestDirs(t *testing.T) {
	root := t.TempDir()
	dirs := DirsAt(root)

	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if _, err := os.Stat(dirs.Log); err != nil {
		t.Errorf("Expected log dir to exist: %v", err)
	}

	if dirs.CacheFile() != filepath.Join(root, ".cache.gob") {
		t.Errorf("Unexpected cache file %s", dirs.CacheFile())
	}
	if dirs.LogFile() != filepath.Join(root, "logs", "fcclipper.log") {
		t.Errorf("Unexpected log file %s", dirs.LogFile())
	}
	if dirs.CredentialsFile() != filepath.Join(root, "config.ini") {
		t.Errorf("Unexpected credentials file %s", dirs.CredentialsFile())
	}

	if d := DefaultDirs(); d.Config == "" || d.Data == "" || d.Log == "" {
		t.Errorf("DefaultDirs left a directory empty: %+v", d)
	}
}
