package config

import (
	"net"
	"strconv"
	"time"

	"github.com/fystack/solana-mcp/internal/rpc"
)

type Env string

const (
	DevEnv  Env = "dev"
	ProdEnv Env = "prod"
	StgEnv  Env = "stag"
)

const (
	DefaultHost       = "0.0.0.0"
	DefaultPort       = 3000
	DefaultRPCURL     = "https://api.mainnet-beta.solana.com"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 200 * time.Millisecond
	DefaultLogLevel   = "info"
	DefaultSubject    = "solana_mcp"
)

type Config struct {
	Environment Env           `yaml:"env"     validate:"required,oneof=dev prod stag"`
	Server      ServerConfig  `yaml:"server"`
	Solana      SolanaConfig  `yaml:"solana"`
	Logging     LoggingConfig `yaml:"logging"`
	Nats        NatsConfig    `yaml:"nats"`
}

type ServerConfig struct {
	Host  string      `yaml:"host" validate:"required"`
	Port  int         `yaml:"port" validate:"required,min=1,max=65535"`
	Tools ToolsConfig `yaml:"tools"`
}

// ToolsConfig narrows the exposed tool set with glob patterns on tool names.
type ToolsConfig struct {
	Include []string `yaml:"include" validate:"dive,required"`
	Exclude []string `yaml:"exclude" validate:"dive,required"`
}

type SolanaConfig struct {
	RPCURL  string        `yaml:"rpc_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
	// MaxRetries is a pointer so an explicit 0 is told apart from unset.
	MaxRetries *int            `yaml:"max_retries" validate:"omitempty,min=0,max=10"`
	RetryDelay time.Duration   `yaml:"retry_delay" validate:"min=0"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
	Auth       *rpc.AuthConfig `yaml:"auth,omitempty"`
}

type RateLimitConfig struct {
	RPS   int `yaml:"rps"   validate:"min=0"`
	Burst int `yaml:"burst" validate:"min=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
}

// NatsConfig enables tool-call audit events when URL is set.
type NatsConfig struct {
	URL           string `yaml:"url" validate:"omitempty,url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	// Stream switches publishing from core NATS to a JetStream stream.
	Stream   string `yaml:"stream"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (n NatsConfig) Enabled() bool { return n.URL != "" }

// Retries returns the configured retry budget.
func (s SolanaConfig) Retries() int {
	if s.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *s.MaxRetries
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// defaults leaves MaxRetries nil: mergo dereferences pointers and would
// overwrite an explicit 0. Retries applies that default instead.
func defaults() Config {
	return Config{
		Environment: DevEnv,
		Server:      ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Solana: SolanaConfig{
			RPCURL:     DefaultRPCURL,
			Timeout:    DefaultTimeout,
			RetryDelay: DefaultRetryDelay,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel},
		Nats:    NatsConfig{SubjectPrefix: DefaultSubject},
	}
}
