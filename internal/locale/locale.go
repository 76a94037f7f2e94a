package locale

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed lang/*.yaml
var bundled embed.FS

const fallbackLocale = "en_US"

type Locale struct {
	translations map[string]string
	locale       string
}

var (
	globalLocale *Locale
	fallback     *Locale
	fallbackOnce sync.Once
)

// InitLocale initializes the global locale system
func InitLocale() error {
	locale := DetectSystemLocale()

	l, err := LoadLocale(locale)
	if err != nil {
		l, err = LoadLocale(fallbackLocale)
		if err != nil {
			return fmt.Errorf("failed to load fallback locale %s: %w", fallbackLocale, err)
		}
	}

	globalLocale = l
	return nil
}

// DetectSystemLocale detects the user's system locale
func DetectSystemLocale() string {
	for _, name := range []string{"LANG", "LC_ALL", "LC_MESSAGES"} {
		if locale := os.Getenv(name); locale != "" {
			// e.g. "en_US.UTF-8"
			parts := strings.Split(locale, ".")
			if parts[0] != "" && parts[0] != "C" && parts[0] != "POSIX" {
				return parts[0]
			}
		}
	}

	if runtime.GOOS == "windows" {
		if locale := os.Getenv("LANG"); locale != "" {
			return locale
		}
	}

	return fallbackLocale
}

// LoadLocale loads lang/<locale>.yaml next to the executable, falling back to
// the catalog compiled into the binary.
func LoadLocale(locale string) (*Locale, error) {
	data, err := readOverride(locale)
	if err != nil {
		data, err = bundled.ReadFile("lang/" + locale + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("no catalog for locale %s: %w", locale, err)
		}
	}

	return parseLocale(locale, data)
}

func readOverride(locale string) ([]byte, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(filepath.Dir(exePath), "lang", locale+".yaml"))
}

func parseLocale(locale string, data []byte) (*Locale, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse locale %s: %w", locale, err)
	}

	return &Locale{
		translations: translations,
		locale:       locale,
	}, nil
}

func bundledFallback() *Locale {
	fallbackOnce.Do(func() {
		data, err := bundled.ReadFile("lang/" + fallbackLocale + ".yaml")
		if err != nil {
			return
		}
		fallback, _ = parseLocale(fallbackLocale, data)
	})
	return fallback
}

// T translates a key with optional fmt parameters. Keys missing from the
// active locale come from the bundled en_US catalog; unknown keys are
// returned as is.
func T(key string, params ...interface{}) string {
	translation, ok := lookup(globalLocale, key)
	if !ok {
		translation, ok = lookup(bundledFallback(), key)
	}
	if !ok {
		return key
	}

	if len(params) > 0 {
		return fmt.Sprintf(translation, params...)
	}
	return translation
}

func lookup(l *Locale, key string) (string, bool) {
	if l == nil {
		return "", false
	}
	translation, ok := l.translations[key]
	return translation, ok
}

// GetLocale returns the current locale code (e.g., "en_US")
func GetLocale() string {
	if globalLocale == nil {
		return fallbackLocale
	}
	return globalLocale.locale
}
