package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// UserServiceConfig holds the configuration of the user service.
type UserServiceConfig struct {
	StoreDriver string         `env:"STORE_DRIVER" envDefault:"mongo"`
	HTTP        HTTPConfig     `envPrefix:"HTTP_"`
	Mongo       MongoConfig    `envPrefix:"MONGO_"`
	Token       TokenConfig    `envPrefix:"TOKEN_"`
	Password    PasswordConfig `envPrefix:"PASSWORD_"`
	Log         LogConfig      `envPrefix:"LOG_"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR"             envDefault:":5005"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigin   string        `env:"ALLOWED_ORIGIN"   envDefault:"http://localhost:3000"`
}

type MongoConfig struct {
	URI            string        `env:"URI"             envDefault:"mongodb://127.0.0.1:27017"`
	Database       string        `env:"DATABASE"        envDefault:"iron-connections-server"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// TokenConfig configures session tokens. Secret is the process-wide signing
// secret and is loaded once at startup.
type TokenConfig struct {
	Secret    string        `env:"SECRET,required"`
	ExpiresIn time.Duration `env:"EXPIRES_IN"      envDefault:"6h"`
	Issuer    string        `env:"ISSUER"          envDefault:"iron-connections"`
	Audience  string        `env:"AUDIENCE"        envDefault:"iron-connections-client"`
}

// PasswordConfig holds the argon2id cost parameters.
type PasswordConfig struct {
	TimeCost    uint32 `env:"TIME_COST"   envDefault:"3"`
	MemoryCost  uint32 `env:"MEMORY_COST" envDefault:"65536"`
	Parallelism uint8  `env:"PARALLELISM" envDefault:"4"`
}

type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	Pretty bool   `env:"PRETTY" envDefault:"false"`
}

// Load parses the configuration from the environment and validates it.
func Load() (*UserServiceConfig, error) {
	cfg, err := env.ParseAs[UserServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *UserServiceConfig) validate() error {
	switch c.StoreDriver {
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("missing MONGO_URI environment variable")
		}
		if c.Mongo.Database == "" {
			return errors.New("missing MONGO_DATABASE environment variable")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.Token.Secret == "" {
		return errors.New("missing TOKEN_SECRET environment variable")
	}
	if c.Token.Issuer == "" || c.Token.Audience == "" {
		return errors.New("TOKEN_ISSUER and TOKEN_AUDIENCE must be set")
	}
	if c.Token.ExpiresIn <= 0 {
		return errors.New("TOKEN_EXPIRES_IN must be positive")
	}
	if c.Password.Parallelism == 0 {
		return errors.New("PASSWORD_PARALLELISM must be positive")
	}
	if c.Password.MemoryCost < 8*uint32(c.Password.Parallelism) {
		return errors.New("PASSWORD_MEMORY_COST must be at least 8 KiB per thread")
	}

	return nil
}
