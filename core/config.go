package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		Locale       string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Client   ClientConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
		ReportCacheTTL  time.Duration
		InMemory        bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ClientConfig struct {
		BaseURL        string
		Endpoints      EndpointsConfig
		SessionFile    string
		RequestTimeout time.Duration
		FanOutLimit    int
	}

	// EndpointsConfig holds the URL of each remote resource.
	// An empty value means "<BaseURL>/<resource>".
	EndpointsConfig struct {
		Auth     string
		Students string
		Grades   string
		Schedule string
		Classes  string
	}
)

func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dc.Host, dc.Port)
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with GRADEBOOK_ and use underscores for nesting: GRADEBOOK_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			panic(fmt.Sprintf("config.godotenv(%s): %v", dotEnvPath, err))
		}
	}

	v.SetEnvPrefix("gradebook")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(env, v)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Электронный журнал")
	v.SetDefault("locale", "ru")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.reportCacheTTL", time.Minute)
	v.SetDefault("server.inMemory", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "gradebook")
	v.SetDefault("database.user", "gradebook")
	v.SetDefault("database.password", "gradebook")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("client.baseURL", "http://localhost:8000")
	v.SetDefault("client.endpoints.auth", "")
	v.SetDefault("client.endpoints.students", "")
	v.SetDefault("client.endpoints.grades", "")
	v.SetDefault("client.endpoints.schedule", "")
	v.SetDefault("client.endpoints.classes", "")
	v.SetDefault("client.sessionFile", defaultSessionFile())
	v.SetDefault("client.requestTimeout", 15*time.Second)
	v.SetDefault("client.fanOutLimit", 4)
}

func fromViper(env string, v *viper.Viper) *Config {
	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Locale:       v.GetString("locale"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
			ReportCacheTTL:  v.GetDuration("server.reportCacheTTL"),
			InMemory:        v.GetBool("server.inMemory"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Client: ClientConfig{
			BaseURL: v.GetString("client.baseURL"),
			Endpoints: EndpointsConfig{
				Auth:     v.GetString("client.endpoints.auth"),
				Students: v.GetString("client.endpoints.students"),
				Grades:   v.GetString("client.endpoints.grades"),
				Schedule: v.GetString("client.endpoints.schedule"),
				Classes:  v.GetString("client.endpoints.classes"),
			},
			SessionFile:    v.GetString("client.sessionFile"),
			RequestTimeout: v.GetDuration("client.requestTimeout"),
			FanOutLimit:    v.GetInt("client.fanOutLimit"),
		},
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gradebook", "storage.json")
}
