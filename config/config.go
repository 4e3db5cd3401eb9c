package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Gateway   GatewayConfig  `yaml:"gateway"`
	Auth      AuthConfig     `yaml:"auth"`
	Flight    FlightConfig   `yaml:"flight"`
	Passenger ServiceConfig  `yaml:"passenger"`
	Ticket    TicketConfig   `yaml:"ticket"`
	Email     EmailConfig    `yaml:"email"`
	Database  DatabaseConfig `yaml:"database"`
	MySQL     MySQLConfig    `yaml:"mysql"`
	Redis     RedisConfig    `yaml:"redis"`
	Broker    string         `yaml:"broker"`
	Kafka     KafkaConfig    `yaml:"kafka"`
	RabbitMQ  RabbitMQConfig `yaml:"rabbitmq"`
	JWT       JWTConfig      `yaml:"jwt"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

// ServiceConfig is the listener pair every service binary runs.
type ServiceConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	GRPC GRPCConfig `yaml:"grpc"`
}

type GatewayConfig struct {
	ServiceConfig `yaml:",inline"`
	Routes        map[string]string `yaml:"routes"`
	AllowOrigins  []string          `yaml:"allow_origins"`
	RateLimit     RateLimitConfig   `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type AuthConfig struct {
	ServiceConfig      `yaml:",inline"`
	BcryptCost         int `yaml:"bcrypt_cost"`
	PasswordMaxAgeDays int `yaml:"password_max_age_days"`
}

type FlightConfig struct {
	ServiceConfig   `yaml:",inline"`
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
}

type TicketConfig struct {
	ServiceConfig `yaml:",inline"`
	FlightURL     string        `yaml:"flight_url"`
	PassengerURL  string        `yaml:"passenger_url"`
	ClientTimeout int           `yaml:"client_timeout_seconds"`
	Breaker       BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold"`
	OpenSeconds      int `yaml:"open_seconds"`
}

type EmailConfig struct {
	ServiceConfig `yaml:",inline"`
	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	From          string `yaml:"from"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

func (m MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC", m.User, m.Password, m.Host, m.Port, m.Name)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	TicketTopic string   `yaml:"ticket_topic"`
	GroupID     string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type JWTConfig struct {
	Secret       string `yaml:"secret"`
	ExpirationMs int64  `yaml:"expiration_ms"`
	CookieName   string `yaml:"cookie_name"`
}

func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpirationMs) * time.Millisecond
}

const (
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
)

// LoadConfig reads an optional .env next to the process, expands ${VAR}
// references in the YAML file and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes raw YAML after environment expansion.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Broker == "" {
		c.Broker = BrokerKafka
	}
	if c.Kafka.TicketTopic == "" {
		c.Kafka.TicketTopic = "ticket-confirmation"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "email-group"
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "ticket-confirmation"
	}
	if c.JWT.CookieName == "" {
		c.JWT.CookieName = "flightbooking-jwt"
	}
	if c.JWT.ExpirationMs == 0 {
		c.JWT.ExpirationMs = 86400000
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Auth.PasswordMaxAgeDays == 0 {
		c.Auth.PasswordMaxAgeDays = 90
	}
	if c.Ticket.ClientTimeout == 0 {
		c.Ticket.ClientTimeout = 5
	}
	if c.Ticket.Breaker.FailureThreshold == 0 {
		c.Ticket.Breaker.FailureThreshold = 5
	}
	if c.Ticket.Breaker.OpenSeconds == 0 {
		c.Ticket.Breaker.OpenSeconds = 30
	}
	if c.Email.From == "" {
		c.Email.From = "no-reply@flightapp.com"
	}
	if c.Gateway.RateLimit.RequestsPerSecond == 0 {
		c.Gateway.RateLimit.RequestsPerSecond = 100
	}
	if c.Gateway.RateLimit.Burst == 0 {
		c.Gateway.RateLimit.Burst = 100
	}
	if len(c.Gateway.AllowOrigins) == 0 {
		c.Gateway.AllowOrigins = []string{"http://localhost:4200"}
	}
}
