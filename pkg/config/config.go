package config

import "time"

// StorageMongo / StorageMemory message store driver
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Chat definition chat_service YAML structure
type Chat struct {
	Port    string `mapstructure:"port"`
	Storage string `mapstructure:"storage"`
	Pprof   bool   `mapstructure:"pprof"`

	MongoSQL   DatabaseConfig  `mapstructure:"mongo"`
	PostgreSQL DatabaseConfig  `mapstructure:"pg"`
	Redis      RedisConfig     `mapstructure:"redis"`
	MinIO      MinIOConfig     `mapstructure:"minio"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Websocket  WebsocketConfig `mapstructure:"websocket"`
	Message    MessageConfig   `mapstructure:"message"`
}

// RedisConfig definition redis setting
// Addr 有值時使用單節點, 否則走 .env 的 sentinel 設定
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	RedisDB int    `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition attachment bucket setting
type MinIOConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	BucketName    string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicURL     string `mapstructure:"public_url"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// AuthConfig jwt setting shared with the identity service
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// WebsocketConfig per connection transport setting
type WebsocketConfig struct {
	SendBuffer int           `mapstructure:"send_buffer"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	ReadLimit  int64         `mapstructure:"read_limit"`
}

// MessageConfig message content limits
type MessageConfig struct {
	MaxTextLength int   `mapstructure:"max_text_length"`
	MaxImageBytes int64 `mapstructure:"max_image_bytes"`
}

// WithDefaults fill zero values
func (w WebsocketConfig) WithDefaults() WebsocketConfig {
	if w.SendBuffer <= 0 {
		w.SendBuffer = 256
	}
	if w.PongWait <= 0 {
		w.PongWait = 60 * time.Second
	}
	if w.PingPeriod <= 0 || w.PingPeriod >= w.PongWait {
		w.PingPeriod = (w.PongWait * 9) / 10
	}
	if w.WriteWait <= 0 {
		w.WriteWait = 10 * time.Second
	}
	if w.ReadLimit <= 0 {
		w.ReadLimit = 8 * 1024
	}
	return w
}

// WithDefaults fill zero values
func (m MessageConfig) WithDefaults() MessageConfig {
	if m.MaxTextLength <= 0 {
		m.MaxTextLength = 5000
	}
	if m.MaxImageBytes <= 0 {
		m.MaxImageBytes = 5 << 20
	}
	return m
}
