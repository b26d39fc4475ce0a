package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Secret     string `yaml:"secret"`
	SessionKey string `yaml:"session_key"`
	// AllowOrigins lists the storefront origins allowed to send
	// credentialed requests. A wildcard would break the cart session and
	// auth cookies, browsers refuse "*" with credentials.
	AllowOrigins []string `yaml:"allow_origins"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Inbox    string `yaml:"inbox"`
}

type StorageConfig struct {
	// Type selects the payment proof uploader: local | remote
	Type     string `yaml:"type"`
	Dir      string `yaml:"dir"`
	Endpoint string `yaml:"endpoint"`
	ApiKey   string `yaml:"api_key"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Mail     MailConfig    `yaml:"mail" json:"mail"`
	Storage  StorageConfig `yaml:"storage" json:"storage"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetProofDir() string {
	return path.Join(c.System.Workdir, "payment-proofs")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(path.Join(c.System.Workdir, "logs"), 0755)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "data"), 0755)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "payment-proofs"), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Latoree",
		Location: "America/Bogota",
		Workdir:  "/var/latoree",
		Debug:    true,
	},
	Web: WebConfig{
		Host:         "0.0.0.0",
		Port:         1880,
		Secret:       "9b6de5cc-latoree-1884fd",
		SessionKey:   "latoree-session-secret",
		AllowOrigins: []string{"https://latoree.shop", "http://localhost:3000"},
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "latoree",
		User:     "postgres",
		Passwd:   "root",
		MaxConn:  100,
		IdleConn: 10,
	},
	Mail: MailConfig{
		Host: "127.0.0.1",
		Port: 25,
		From: "no-reply@latoree.shop",
	},
	Storage: StorageConfig{
		Type: "local",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/latoree/logs/latoree.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// variable overrides. A missing file yields the default configuration.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "parse config %s error: %s\n", cfile, err)
				cfg = DefaultAppConfig
			}
		} else {
			cfg = DefaultAppConfig
		}
	} else {
		cfg = DefaultAppConfig
	}

	setEnvValue("LATOREE_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("LATOREE_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("LATOREE_SESSION_KEY", func(v string) { cfg.Web.SessionKey = v })
	setEnvValue("LATOREE_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("LATOREE_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("LATOREE_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("LATOREE_DB_PASSWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("LATOREE_MAIL_HOST", func(v string) { cfg.Mail.Host = v })
	setEnvValue("LATOREE_MAIL_USERNAME", func(v string) { cfg.Mail.Username = v })
	setEnvValue("LATOREE_MAIL_PASSWORD", func(v string) { cfg.Mail.Password = v })
	setEnvValue("LATOREE_STORAGE_ENDPOINT", func(v string) { cfg.Storage.Endpoint = v })
	setEnvValue("LATOREE_STORAGE_APIKEY", func(v string) { cfg.Storage.ApiKey = v })
	setEnvValue("LATOREE_WEB_ALLOW_ORIGINS", func(v string) { cfg.Web.AllowOrigins = strings.Split(v, ",") })

	if len(cfg.Web.AllowOrigins) == 0 {
		cfg.Web.AllowOrigins = DefaultAppConfig.Web.AllowOrigins
	}

	cfg.initDirs()
	return cfg
}
