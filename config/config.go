package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Secret    string `yaml:"secret"`
	JwtSecret string `yaml:"jwt_secret"`
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

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// PaymentConfig holds the Zibal gateway settings. AmountRials is the fixed
// promotion price charged per paid boost.
type PaymentConfig struct {
	Merchant    string `yaml:"merchant"`
	ApiUrl      string `yaml:"api_url"`
	GatewayUrl  string `yaml:"gateway_url"`
	CallbackUrl string `yaml:"callback_url"`
	AmountRials int64  `yaml:"amount_rials"`
}

type SmtpConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
	Payment  PaymentConfig `yaml:"payment" json:"payment"`
	Smtp     SmtpConfig    `yaml:"smtp" json:"smtp"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetUploadDir() string {
	return path.Join(c.System.Workdir, "uploads")
}

func (c *AppConfig) InitDirs() error {
	for _, dir := range []string{c.System.Workdir, c.GetLogDir(), c.GetDataDir(), c.GetUploadDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "bazaar",
		Location: "Asia/Tehran",
		Workdir:  "/var/bazaar",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		Secret:    "9b6de5cc-bazaar-1816",
		JwtSecret: "9b6de5cc-bazaar-admin",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "bazaar",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/bazaar/bazaar.log",
	},
	Payment: PaymentConfig{
		ApiUrl:      "https://api.zibal.ir",
		GatewayUrl:  "https://gateway.zibal.ir/start",
		CallbackUrl: "http://localhost:1816/payment/verify",
		AmountRials: 70000,
	},
}

func setEnvValue(name string, f func(v string)) {
	if value := os.Getenv(name); value != "" {
		f(value)
	}
}

func setEnvInt64Value(name string, f func(v int64)) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	var p int64
	if _, err := fmt.Sscanf(value, "%d", &p); err == nil {
		f(p)
	}
}

// LoadConfig reads the yaml configuration file and applies environment
// overrides. A missing file falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err == nil {
			if err = yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "parse config %s error: %v\n", cfile, err)
			}
		}
	}

	setEnvValue("BAZAAR_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("BAZAAR_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("BAZAAR_WEB_JWT_SECRET", func(v string) { cfg.Web.JwtSecret = v })
	setEnvInt64Value("BAZAAR_WEB_PORT", func(v int64) { cfg.Web.Port = int(v) })
	setEnvValue("BAZAAR_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("BAZAAR_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvInt64Value("BAZAAR_DB_PORT", func(v int64) { cfg.Database.Port = int(v) })
	setEnvValue("BAZAAR_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("BAZAAR_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("BAZAAR_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("BAZAAR_ZIBAL_MERCHANT", func(v string) { cfg.Payment.Merchant = v })
	setEnvValue("BAZAAR_ZIBAL_CALLBACK", func(v string) { cfg.Payment.CallbackUrl = v })
	setEnvValue("BAZAAR_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvInt64Value("BAZAAR_SMTP_PORT", func(v int64) { cfg.Smtp.Port = int(v) })

	return cfg
}
