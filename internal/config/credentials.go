package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const DefaultDomain = "foodcity.com"

const (
	sectionMain    = "main"
	sectionProfile = "profile"
)

type Credentials struct {
	Username string
	Password string
	Domain   string
}

// CredentialStore keeps the account credentials in an INI file with a [main]
// section (username, password, domain) and a [profile] section (first_name).
// Every change is written back to disk immediately.
type CredentialStore struct {
	path string
	file *ini.File
}

// LoadCredentialStore opens the file at path, creating it with empty
// credentials and the default domain on first run.
func LoadCredentialStore(path string) (*CredentialStore, error) {
	store := &CredentialStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		store.file = defaultCredentialFile()
		if err := store.save(); err != nil {
			return nil, err
		}
		return store, nil
	} else if err != nil {
		return nil, err
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	store.file = file
	return store, nil
}

func defaultCredentialFile() *ini.File {
	file := ini.Empty()
	main := file.Section(sectionMain)
	main.Key("username").SetValue("")
	main.Key("password").SetValue("")
	main.Key("domain").SetValue(DefaultDomain)
	file.Section(sectionProfile).Key("first_name").SetValue("")
	return file
}

func (s *CredentialStore) Path() string { return s.path }

func (s *CredentialStore) Credentials() Credentials {
	main := s.file.Section(sectionMain)
	domain := main.Key("domain").String()
	if domain == "" {
		domain = DefaultDomain
	}
	return Credentials{
		Username: main.Key("username").String(),
		Password: main.Key("password").String(),
		Domain:   domain,
	}
}

func (s *CredentialStore) HasUsername() bool {
	return s.file.Section(sectionMain).Key("username").String() != ""
}

func (s *CredentialStore) FirstName() string {
	return s.file.Section(sectionProfile).Key("first_name").String()
}

// SetCredentials replaces username and password and persists the file.
func (s *CredentialStore) SetCredentials(username, password string) error {
	main := s.file.Section(sectionMain)
	main.Key("username").SetValue(username)
	main.Key("password").SetValue(password)
	return s.save()
}

func (s *CredentialStore) save() error {
	var buf bytes.Buffer
	if _, err := s.file.WriteTo(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	// the file holds a plain text password
	return os.WriteFile(s.path, buf.Bytes(), 0600)
}
