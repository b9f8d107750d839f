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
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env              string `mapstructure:"-"`
		Build            string `mapstructure:"build"`
		Debug            bool   `mapstructure:"debug"`
		TestMode         bool   `mapstructure:"testMode"`
		AppName          string `mapstructure:"appName"`
		SecretKey        string `mapstructure:"secretKey"`
		FrontendBaseURL  string `mapstructure:"frontendBaseURL"`
		DefaultFromEmail string `mapstructure:"defaultFromEmail"`
		RollbarToken     string `mapstructure:"rollbarToken"`
		SendgridApiKey   string `mapstructure:"sendgridApiKey"`
		WorkDir          string `mapstructure:"-"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Admin    AdminConfig    `mapstructure:"admin"`
		Progress ProgressConfig `mapstructure:"progress"`
	}

	ServerConfig struct {
		Host               string        `mapstructure:"host"`
		DebugHost          string        `mapstructure:"debugHost"`
		JWTExpirationDelta time.Duration `mapstructure:"jwtExpirationDelta"`
		ShutdownTimeout    time.Duration `mapstructure:"shutdownTimeout"`
		ReadTimeout        time.Duration `mapstructure:"readTimeout"`
		WriteTimeout       time.Duration `mapstructure:"writeTimeout"`
		AllowOrigins       []string      `mapstructure:"allowOrigins"`
	}

	DatabaseConfig struct {
		Engine        string `mapstructure:"engine"` // postgres | mongodb | memory
		User          string `mapstructure:"user"`
		Password      string `mapstructure:"password"`
		AdminUser     string `mapstructure:"adminUser"`
		AdminPassword string `mapstructure:"adminPassword"`
		Host          string `mapstructure:"host"`
		Port          string `mapstructure:"port"`
		Name          string `mapstructure:"name"`
		DisableTLS    bool   `mapstructure:"disableTLS"`
		MongoURI      string `mapstructure:"mongoURI"`

		ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
	}

	// AdminConfig holds the account seeded on API start when Email is set.
	AdminConfig struct {
		Name     string `mapstructure:"name"`
		Email    string `mapstructure:"email"`
		Password string `mapstructure:"password"`
	}

	ProgressConfig struct {
		MaxUpdateAttempts int `mapstructure:"maxUpdateAttempts"`
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// FromAddress parses DefaultFromEmail, falling back to the bare address.
func (conf *Config) FromAddress() mail.Address {
	if addr, err := mail.ParseAddress(conf.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmail}
}

// NewConfig loads the configuration of the current ENV (DEV by default; TEST, QA, PROD).
// Values are read, by order of precedence, from the environment, from config/.env.<env> and from defaults.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "EduPulse")
	v.SetDefault("secretKey", "n7#k2v!q9)zt0w$+e4=ra&ub5(d!y)#*m1(#hx8j^$fgl3cps")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "EduPulse <noreply@localhost>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.allowOrigins", []string{"*"})

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.user", "edupulse")
	v.SetDefault("database.password", "edupulse")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "edupulse")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.mongoURI", "mongodb://localhost:27017")
	v.SetDefault("database.connectTimeout", 10*time.Second)

	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("progress.maxUpdateAttempts", 3)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", "memory")
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{Env: env, WorkDir: workDir}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(conf, hook); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	return conf
}
