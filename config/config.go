package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string
	LogLevel string

	Database     DatabaseConfigs
	ApiServer    APIServerConfigs
	Auth         AuthConfigs
	Approval     ApprovalConfigs
	Notification NotificationConfigs
	Storage      S3Configs
	File         FileConfigs
	Redis        RedisConfigs
	Kafka        KafkaConfigs
	RateLimit    RateLimitConfigs
}

type DatabaseConfigs struct {
	// Driver is either mysql or sqlite.
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// TxTimeout bounds every state-mutating transaction.
	TxTimeout time.Duration
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		// _txlock=immediate takes the write lock on BEGIN, so concurrent writers
		// wait on busy_timeout instead of failing on lock upgrade.
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate",
			d.Database)
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string

	AllowedOrigins []string
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	MaxLimit     int
	DefaultLimit int

	ServerConfigs
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type ApprovalConfigs struct {
	// AppURL is the base of the emailed approval link,
	// <AppURL>/?approve_token=<token>.
	AppURL string

	ReminderInterval time.Duration
}

type NotificationConfigs struct {
	// Mode selects the approval dispatcher: smtp, kafka or log.
	Mode  string
	Topic string
	SMTP  SMTPConfigs
}

type SMTPConfigs struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c SMTPConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type S3Configs struct {
	Region         string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	SSLDisabled    bool
}

type FileConfigs struct {
	MaxSize        int64
	MaxPhotoWidth  uint
	MaxPhotoHeight uint
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr string
}

func (c KafkaConfigs) Brokers() []string {
	if c.Addr == "" {
		return nil
	}

	return strings.Split(c.Addr, ",")
}

type RateLimitConfigs struct {
	ApprovalRequests int
	ApprovalWindow   time.Duration
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:    "sqlite",
			Database:  "homequest.db",
			TxTimeout: 5 * time.Second,
		},
		ApiServer: APIServerConfigs{
			MaxLimit:      50,
			DefaultLimit:  20,
			ServerConfigs: ServerConfigs{Port: "8080"},
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{Name: "access_token", Expiration: 24 * time.Hour},
		},
		Approval: ApprovalConfigs{
			AppURL:           "http://localhost:8080",
			ReminderInterval: time.Hour,
		},
		Notification: NotificationConfigs{
			Mode:  "log",
			Topic: "approval_requested",
			SMTP:  SMTPConfigs{Host: "smtp.gmail.com", Port: "587"},
		},
		File: FileConfigs{
			MaxSize:        2 * 1024 * 1024,
			MaxPhotoWidth:  1024,
			MaxPhotoHeight: 1024,
		},
		RateLimit: RateLimitConfigs{
			ApprovalRequests: 10,
			ApprovalWindow:   time.Minute,
		},
	}
}

// Load decodes the toml file at path over the defaults. Secrets can be
// overridden by environment variables so they stay out of the file.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	overrideEnv(&cfg.Database.Password, "DB_PASSWORD")
	overrideEnv(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	overrideEnv(&cfg.Notification.SMTP.Password, "SMTP_PASSWORD")
	overrideEnv(&cfg.Storage.SecretKey, "S3_SECRET_KEY")

	if cfg.Auth.TokenSecret == "" {
		return Configs{}, fmt.Errorf("auth token secret is required")
	}

	return cfg, nil
}

func overrideEnv(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}
