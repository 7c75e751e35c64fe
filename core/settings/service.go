// Package settings persists the attendance window configured by administrators.
package settings

import (
	"context"
	"encoding/json"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/presence"
)

// Key is the name under which settings are persisted, apart from the entity tables.
const Key = "app_settings"

// Settings holds the application-wide preferences.
type Settings struct {
	PresenceStartTime string `json:"presenceStartTime"`
	PresenceEndTime   string `json:"presenceEndTime"`
}

// Window returns the attendance window described by the settings.
func (s Settings) Window() presence.Window {
	return presence.Window{Start: s.PresenceStartTime, End: s.PresenceEndTime}
}

// UpdateSettings holds a partial change. Empty fields are left untouched.
type UpdateSettings struct {
	PresenceStartTime string `json:"presenceStartTime" validate:"omitempty,hhmm"`
	PresenceEndTime   string `json:"presenceEndTime" validate:"omitempty,hhmm"`
}

func (us UpdateSettings) apply(s Settings) Settings {
	if us.PresenceStartTime != "" {
		s.PresenceStartTime = us.PresenceStartTime
	}
	if us.PresenceEndTime != "" {
		s.PresenceEndTime = us.PresenceEndTime
	}
	return s
}

// Validate checks the formats of the change and the ordering of the window it produces over `current`.
// Service.Set does not call it; callers accepting user input do.
func (us *UpdateSettings) Validate(current Settings) error {
	us.PresenceStartTime = core.CleanString(us.PresenceStartTime)
	us.PresenceEndTime = core.CleanString(us.PresenceEndTime)
	if err := core.ValidateStruct(us); err != nil {
		return err
	}
	return us.apply(current).Window().Validate()
}

type (
	// Repository stores raw values by key.
	Repository interface {
		// Load returns the value stored under `key`, and false when there is none.
		Load(ctx context.Context, key string) (string, bool, error)
		Store(ctx context.Context, key, value string) error
	}

	Service struct {
		repo     Repository
		defaults Settings
		logger   core.Logger
	}
)

// NewService returns a settings store falling back to `defaults` when nothing valid is persisted.
func NewService(repo Repository, defaults presence.Window, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	if defaults.Validate() != nil {
		defaults = presence.DefaultWindow
	}
	return &Service{
		repo:     repo,
		defaults: Settings{PresenceStartTime: defaults.Start, PresenceEndTime: defaults.End},
		logger:   logger,
	}
}

func (svc *Service) Defaults() Settings { return svc.defaults }

// Get returns the persisted settings merged over the defaults.
// An absent or unreadable value yields the defaults; only storage failures are reported.
func (svc *Service) Get(ctx context.Context) (Settings, error) {
	raw, ok, err := svc.repo.Load(ctx, Key)
	if err != nil {
		return Settings{}, err
	}
	if !ok {
		return svc.defaults, nil
	}
	var stored Settings
	if err = json.Unmarshal([]byte(raw), &stored); err != nil {
		svc.logger.Warn("settings: unreadable value, using defaults", errors.Wrap(err, "decoding settings"))
		return svc.defaults, nil
	}
	s := UpdateSettings{PresenceStartTime: stored.PresenceStartTime, PresenceEndTime: stored.PresenceEndTime}.apply(svc.defaults)
	if !core.IsValidTime(s.PresenceStartTime) || !core.IsValidTime(s.PresenceEndTime) {
		svc.logger.Warn("settings: malformed window, using defaults", map[string]interface{}{"value": raw})
		return svc.defaults, nil
	}
	return s, nil
}

// Window returns the attendance window currently in force.
func (svc *Service) Window(ctx context.Context) (presence.Window, error) {
	s, err := svc.Get(ctx)
	if err != nil {
		return presence.Window{}, err
	}
	return s.Window(), nil
}

// Set merges `us` over the current settings and persists the result.
func (svc *Service) Set(ctx context.Context, us UpdateSettings) (Settings, error) {
	current, err := svc.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	s := us.apply(current)
	raw, err := json.Marshal(s)
	if err != nil {
		return Settings{}, errors.Wrap(err, "encoding settings")
	}
	if err = svc.repo.Store(ctx, Key, string(raw)); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Reset drops the persisted settings back to the defaults.
func (svc *Service) Reset(ctx context.Context) (Settings, error) {
	raw, err := json.Marshal(svc.defaults)
	if err != nil {
		return Settings{}, errors.Wrap(err, "encoding settings")
	}
	if err = svc.repo.Store(ctx, Key, string(raw)); err != nil {
		return Settings{}, err
	}
	return svc.defaults, nil
}
