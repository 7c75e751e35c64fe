package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SeedAccounts holds the default accounts created on first start.
type SeedAccounts struct {
	AdminName       string
	AdminSurname    string
	AdminEmail      string
	AdminPassword   string
	TrainerName     string
	TrainerSurname  string
	TrainerEmail    string
	TrainerPhone    string
	TrainerPassword string
}

type Config struct {
	Env      string
	AppName  string
	Build    string
	Debug    bool
	TestMode bool
	WorkDir  string

	// DatabasePath is the SQLite file of this installation (":memory:" for an ephemeral store).
	DatabasePath string

	// default attendance window, used until an administrator saves one
	PresenceStartTime string
	PresenceEndTime   string

	SyncBatchSize int
	SyncEndpoint  string

	RollbarToken string

	Seed SeedAccounts
}

// NewConfig loads the configuration from the defaults, the optional
// config/.env.<env> file and the environment (prefixed with the env name).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Presence")
	v.SetDefault("build", "dev")
	v.SetDefault("databasePath", "presence.db")
	v.SetDefault("presenceStartTime", "07:30")
	v.SetDefault("presenceEndTime", "08:00")
	v.SetDefault("syncBatchSize", 50)
	v.SetDefault("syncEndpoint", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("seedAdminName", "Super")
	v.SetDefault("seedAdminSurname", "Admin")
	v.SetDefault("seedAdminEmail", "admin@presence.app")
	v.SetDefault("seedAdminPassword", "admin123")
	v.SetDefault("seedTrainerName", "Jean")
	v.SetDefault("seedTrainerSurname", "Dupont")
	v.SetDefault("seedTrainerEmail", "jean.dupont@formation.com")
	v.SetDefault("seedTrainerPhone", "0102030405")
	v.SetDefault("seedTrainerPassword", "formateur123")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("databasePath", ":memory:")
	}
	v.SetEnvPrefix(env)

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:               env,
		AppName:           v.GetString("appName"),
		Build:             v.GetString("build"),
		Debug:             v.GetBool("debug"),
		TestMode:          v.GetBool("testMode"),
		WorkDir:           workDir,
		DatabasePath:      v.GetString("databasePath"),
		PresenceStartTime: v.GetString("presenceStartTime"),
		PresenceEndTime:   v.GetString("presenceEndTime"),
		SyncBatchSize:     v.GetInt("syncBatchSize"),
		SyncEndpoint:      v.GetString("syncEndpoint"),
		RollbarToken:      v.GetString("rollbarToken"),
		Seed: SeedAccounts{
			AdminName:       v.GetString("seedAdminName"),
			AdminSurname:    v.GetString("seedAdminSurname"),
			AdminEmail:      v.GetString("seedAdminEmail"),
			AdminPassword:   v.GetString("seedAdminPassword"),
			TrainerName:     v.GetString("seedTrainerName"),
			TrainerSurname:  v.GetString("seedTrainerSurname"),
			TrainerEmail:    v.GetString("seedTrainerEmail"),
			TrainerPhone:    v.GetString("seedTrainerPhone"),
			TrainerPassword: v.GetString("seedTrainerPassword"),
		},
	}
}
