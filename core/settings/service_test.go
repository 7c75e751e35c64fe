package settings

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/presence"
)

type memRepo struct {
	values  map[string]string
	loadErr error
}

func (r *memRepo) Load(_ context.Context, key string) (string, bool, error) {
	if r.loadErr != nil {
		return "", false, r.loadErr
	}
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *memRepo) Store(_ context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) Debug(msg string, args ...interface{}) { l.Println(append([]interface{}{msg}, args...)...) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.Println(append([]interface{}{msg}, args...)...) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.Println(append([]interface{}{msg}, args...)...) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.Println(append([]interface{}{msg}, args...)...) }
func (l stdLogger) Fatal(msg string, args ...interface{}) { l.Println(append([]interface{}{msg}, args...)...) }

var _ core.Logger = stdLogger{}

func setup() (*Service, *memRepo) {
	repo := &memRepo{values: make(map[string]string)}
	return NewService(repo, presence.DefaultWindow, stdLogger{log.New(io.Discard, "", 0)}), repo
}

func TestService_Get(t *testing.T) {
	defaults := Settings{PresenceStartTime: "07:30", PresenceEndTime: "08:00"}
	tests := []struct {
		name   string
		stored *string
		want   Settings
	}{
		{name: "nothing stored", want: defaults},
		{name: "full value", stored: strPtr(`{"presenceStartTime":"08:00","presenceEndTime":"09:00"}`), want: Settings{"08:00", "09:00"}},
		{name: "partial value", stored: strPtr(`{"presenceEndTime":"08:15"}`), want: Settings{"07:30", "08:15"}},
		{name: "unknown keys", stored: strPtr(`{"theme":"dark"}`), want: defaults},
		{name: "corrupt value", stored: strPtr(`{not json`), want: defaults},
		{name: "malformed time", stored: strPtr(`{"presenceStartTime":"7h30"}`), want: defaults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setup()
			if tt.stored != nil {
				repo.values[Key] = *tt.stored
			}
			got, err := svc.Get(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_GetStorageError(t *testing.T) {
	svc, repo := setup()
	repo.loadErr = core.NewStorageError("app_state.load", errors.New("disk I/O error"))

	_, err := svc.Get(context.Background())
	assert.True(t, core.IsStorage(err))
}

func TestService_SetReset(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup()

	s, err := svc.Set(ctx, UpdateSettings{PresenceEndTime: "08:30"})
	require.NoError(t, err)
	assert.Equal(t, Settings{"07:30", "08:30"}, s)
	assert.JSONEq(t, `{"presenceStartTime":"07:30","presenceEndTime":"08:30"}`, repo.values[Key])

	w, err := svc.Window(ctx)
	require.NoError(t, err)
	assert.Equal(t, presence.Window{Start: "07:30", End: "08:30"}, w)

	s, err = svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, svc.Defaults(), s)

	s, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, svc.Defaults(), s)
}

func TestNewService_invalidDefaults(t *testing.T) {
	repo := &memRepo{values: make(map[string]string)}
	svc := NewService(repo, presence.Window{Start: "09:00", End: "08:00"}, stdLogger{log.New(io.Discard, "", 0)})
	assert.Equal(t, Settings{"07:30", "08:00"}, svc.Defaults())
}

func TestUpdateSettings_Validate(t *testing.T) {
	current := Settings{PresenceStartTime: "07:30", PresenceEndTime: "08:00"}
	tests := []struct {
		name    string
		us      UpdateSettings
		wantErr bool
	}{
		{"no change", UpdateSettings{}, false},
		{"both", UpdateSettings{" 13:00 ", "14:00"}, false},
		{"end only", UpdateSettings{PresenceEndTime: "09:00"}, false},
		{"bad format", UpdateSettings{PresenceStartTime: "7:30"}, true},
		{"start after current end", UpdateSettings{PresenceStartTime: "08:30"}, true},
		{"equal bounds", UpdateSettings{"10:00", "10:00"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.us.Validate(current)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
