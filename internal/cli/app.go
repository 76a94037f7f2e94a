// Package cli is the command surface: cobra commands, the interactive menu
// and the console rendering of results.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/jadunn1/fcclipper/internal/browser"
	"github.com/jadunn1/fcclipper/internal/cache"
	"github.com/jadunn1/fcclipper/internal/config"
	"github.com/jadunn1/fcclipper/internal/foodcity"
	"github.com/jadunn1/fcclipper/internal/locale"
	"github.com/jadunn1/fcclipper/internal/observability"
)

const (
	fuelBucksCacheKey = "get_fuel_bucks"
	defaultMenuPause  = 2 * time.Second
)

type flags struct {
	disableHeadless bool
	debug           bool
	settingsPath    string
	dryRun          bool
}

// App holds everything one invocation needs. The exported fields may be
// replaced before Run.
type App struct {
	In   io.Reader
	Out  io.Writer
	Dirs config.Dirs
	// Open starts a browser page; nil launches Chrome from the settings.
	Open foodcity.OpenFunc
	// Logger skips the global logger setup when set.
	Logger    *zap.Logger
	MenuPause time.Duration

	flags    flags
	settings *config.Settings
	store    *config.CredentialStore
	cache    *cache.Registry
	logger   *zap.Logger
	prompter *Prompter
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		In:        in,
		Out:       out,
		Dirs:      config.DefaultDirs(),
		MenuPause: defaultMenuPause,
	}
}

// Run executes the command line in args. Errors are reported to the operator
// and logged before being returned.
func (a *App) Run(ctx context.Context, args []string) error {
	if args == nil {
		args = []string{}
	}
	cmd := NewRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetIn(a.In)
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Out)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		a.report(err)
	}
	return err
}

func (a *App) log() *zap.Logger {
	if a.logger != nil {
		return a.logger
	}
	return observability.GetLogger()
}

func (a *App) report(err error) {
	fmt.Fprintln(a.Out, locale.T("error_prefix", err))
	a.log().Error("command failed", zap.Error(err))
}

// setup loads settings, logging, the catalog, credentials and the cache.
// It runs before every command.
func (a *App) setup(ctx context.Context) error {
	if err := a.Dirs.Ensure(); err != nil {
		return fmt.Errorf("failed to create data directories: %w", err)
	}

	path := a.flags.settingsPath
	if path == "" {
		path = a.Dirs.SettingsFile()
	}
	settings, err := config.LoadSettings(path, a.Dirs)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if a.flags.disableHeadless {
		settings.Headless = false
	}
	if a.flags.debug {
		settings.DebugMode = true
		settings.Logger.Level = "debug"
	}
	a.settings = settings

	if a.Logger != nil {
		a.logger = a.Logger
	} else {
		observability.InitializeLogger(settings.Logger)
		a.logger = observability.GetLogger()
	}

	if err := locale.InitLocale(); err != nil {
		a.logger.Warn("locale initialization failed, using English", zap.Error(err))
	}

	store, err := config.LoadCredentialStore(a.Dirs.CredentialsFile())
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	a.store = store
	a.cache = cache.NewRegistry(a.Dirs.CacheFile(), settings.CacheExpiration(), a.logger.Named("cache"))
	a.prompter = NewPrompter(a.In, a.Out)

	if settings.DebugMode {
		fmt.Fprintln(a.Out, locale.T("debug_mode"))
	}
	if !settings.Headless {
		fmt.Fprintln(a.Out, locale.T("visible_browser_mode"))
	}
	a.logger.Debug("settings loaded", zap.String("path", path), zap.Bool("headless", settings.Headless))

	if !store.HasUsername() {
		return a.promptCredentials(ctx)
	}
	return nil
}

func (a *App) promptCredentials(ctx context.Context) error {
	fmt.Fprintln(a.Out, locale.T("credentials_intro", a.store.Credentials().Domain))

	username, err := a.prompter.AskRequired(ctx, locale.T("prompt_username"))
	if err != nil {
		return err
	}
	password, err := a.prompter.Secret(ctx, locale.T("prompt_password"))
	if err != nil {
		return err
	}
	if err := a.store.SetCredentials(username, password); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	fmt.Fprintln(a.Out, locale.T("credentials_saved", a.store.Path()))

	// cached results belong to the previous account
	if err := a.cache.Clear(); err != nil {
		a.logger.Warn("failed to clear cache", zap.Error(err))
	}
	a.logger.Info("credentials updated")
	return nil
}

func (a *App) opener() foodcity.OpenFunc {
	if a.Open != nil {
		return a.Open
	}

	s := a.settings
	opts := browser.Options{
		Headless:       s.Headless,
		UserDataDir:    s.BrowserProfilePath,
		UserAgent:      s.UserAgent,
		AcceptLanguage: s.AcceptLanguage,
		ViewportWidth:  s.ViewportWidth,
		ViewportHeight: s.ViewportHeight,
		DisableImages:  s.DisableImages,
		NoSandbox:      s.NoSandbox,
		ActionTimeout:  s.ActionWait(),
	}
	logger := a.logger.Named("browser")

	return func(ctx context.Context) (foodcity.Page, error) {
		fmt.Fprintln(a.Out, locale.T("browser_launching"), locale.T("please_wait"))
		session, err := browser.Open(ctx, opts, logger)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(a.Out, locale.T("browser_launched"))
		return session, nil
	}
}

func (a *App) client(dryRun bool) *foodcity.Client {
	s := a.settings
	opts := foodcity.Options{
		DryRun:          dryRun || s.DryRun,
		Headless:        s.Headless,
		MaxTries:        s.MaxTries,
		SignInTimeout:   s.SignInWait(),
		ActionTimeout:   s.ActionWait(),
		ShowMoreTimeout: s.ShowMoreWait(),
		SettleDelay:     s.Settle(),
		LogDir:          a.Dirs.Log,
	}
	return foodcity.NewClient(a.opener(), a.store.Credentials(), opts, a.Out, a.logger.Named("foodcity"))
}

func (a *App) clipCoupons(ctx context.Context, dryRun bool) error {
	client := a.client(dryRun)
	if dryRun || a.settings.DryRun {
		fmt.Fprintln(a.Out, locale.T("dry_run_mode"))
	}

	result, err := client.ClipCoupons(ctx)
	if result != nil {
		a.logger.Info("clip run finished",
			zap.Int("found", result.Found),
			zap.Int("clipped", result.Clipped),
			zap.Int("passes", result.Passes),
			zap.Bool("dry_run", result.DryRun))
	}
	return err
}

func (a *App) fuelBucks(ctx context.Context) error {
	client := a.client(false)
	fragments, err := cache.Remember(a.cache, fuelBucksCacheKey, func() ([]string, bool, error) {
		fragments, err := client.FuelBucks(ctx)
		return fragments, len(fragments) > 0, err
	})
	if err != nil {
		return err
	}
	renderBalance(a.Out, fragments)
	return nil
}

func (a *App) clearCache() error {
	if err := a.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(a.Out, locale.T("cache_cleared"))
	return nil
}
