package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		CORSOrigins               []string
		UploadsDir                string
		MaxUploadSize             int64
	}

	databaseConfig struct {
		Engine     string // sqlite3 | postgres
		Name       string // file path (or file: DSN) for sqlite3
		Host       string
		Port       string
		User       string
		Password   string
		DisableTLS bool

		// postgres role allowed to create the app user and database
		AdminUser     string
		AdminPassword string
	}

	notificacionesConfig struct {
		EmailEnabled     bool
		ReminderSchedule string
		ReminderWindow   time.Duration
	}

	comisionesConfig struct {
		DefaultNombre    string
		DefaultCapacidad int
	}

	clientConfig struct {
		BaseURL          string
		PollInterval     time.Duration
		RetryDelay       time.Duration
		MaxRetries       int
		MaxNotifications int
		StatsTTL         time.Duration
		StorePath        string
	}

	Config struct {
		Build           string
		Env             string
		Debug           bool
		TestMode        bool
		AppName         string
		SecretKey       string
		WorkDir         string
		FrontendBaseURL string
		RollbarToken    string
		SendgridApiKey  string

		Server         serverConfig
		Database       databaseConfig
		Notificaciones notificacionesConfig
		Comisiones     comisionesConfig
		Client         clientConfig

		defaultFromEmail string
	}
)

func (db databaseConfig) Address() string {
	if db.Port == "" {
		return db.Host
	}
	return net.JoinHostPort(db.Host, db.Port)
}

// DefaultFromEmail parses the configured sender, falling back to a bare address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	return *addr
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "TUPAD Organizador Académico")
	v.SetDefault("secretKey", "x3#t9p!u@d-0rg4n1z4d0r_d3v-k3y$2ab7c1e9f")
	v.SetDefault("defaultFromEmail", "TUPAD <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("serverHost", ":8080")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("corsOrigins", []string{"*"})
	v.SetDefault("uploadsDir", "uploads")
	v.SetDefault("maxUploadSize", int64(20<<20))

	v.SetDefault("dbEngine", "sqlite3")
	v.SetDefault("dbName", "organizador.db")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")

	v.SetDefault("notificacionesEmailEnabled", false)
	v.SetDefault("notificacionesReminderSchedule", "@hourly")
	v.SetDefault("notificacionesReminderWindow", 24*time.Hour)

	v.SetDefault("comisionDefaultNombre", "Comisión A")
	v.SetDefault("comisionDefaultCapacidad", 30)

	v.SetDefault("clientBaseURL", "http://localhost:8080")
	v.SetDefault("clientPollInterval", 10*time.Second)
	v.SetDefault("clientRetryDelay", 5*time.Second)
	v.SetDefault("clientMaxRetries", 3)
	v.SetDefault("clientMaxNotifications", 50)
	v.SetDefault("clientStatsTTL", 5*time.Minute)
	v.SetDefault("clientStorePath", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
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
		Build:           v.GetString("build"),
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		WorkDir:         workDir,
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		Server: serverConfig{
			Host:                      v.GetString("serverHost"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			CORSOrigins:               v.GetStringSlice("corsOrigins"),
			UploadsDir:                v.GetString("uploadsDir"),
			MaxUploadSize:             v.GetInt64("maxUploadSize"),
		},
		Database: databaseConfig{
			Engine:     v.GetString("dbEngine"),
			Name:       v.GetString("dbName"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetString("dbPort"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			DisableTLS: v.GetBool("dbDisableTLS"),

			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
		},
		Notificaciones: notificacionesConfig{
			EmailEnabled:     v.GetBool("notificacionesEmailEnabled"),
			ReminderSchedule: v.GetString("notificacionesReminderSchedule"),
			ReminderWindow:   v.GetDuration("notificacionesReminderWindow"),
		},
		Comisiones: comisionesConfig{
			DefaultNombre:    v.GetString("comisionDefaultNombre"),
			DefaultCapacidad: v.GetInt("comisionDefaultCapacidad"),
		},
		Client: clientConfig{
			BaseURL:          v.GetString("clientBaseURL"),
			PollInterval:     v.GetDuration("clientPollInterval"),
			RetryDelay:       v.GetDuration("clientRetryDelay"),
			MaxRetries:       v.GetInt("clientMaxRetries"),
			MaxNotifications: v.GetInt("clientMaxNotifications"),
			StatsTTL:         v.GetDuration("clientStatsTTL"),
			StorePath:        v.GetString("clientStorePath"),
		},
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}
