package pkg

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	HttpPort        int    `mapstructure:"http_port"`
	Env             string `mapstructure:"env"`
	ClientSecret    string `mapstructure:"client_secret"`
	PublicDir       string `mapstructure:"public_dir"`
	LeniencySeconds int    `mapstructure:"leniency_seconds"`
	StrictTypes     bool   `mapstructure:"strict_types"`
	StoreBackend    string `mapstructure:"store_backend"`
	SqlitePath      string `mapstructure:"sqlite_path"`
	RedisAddr       string `mapstructure:"redis_addr"`
	OauthClientId   string `mapstructure:"oauth_client_id"`
	AuthorizeUrl    string `mapstructure:"authorize_url"`
	ConfiguredUrl   string `mapstructure:"configured_url"`
	JwtSecret       string `mapstructure:"jwt_secret"`
}

type ClientConfig struct {
	ServerAddr   string `mapstructure:"server_addr"`
	ClientSecret string `mapstructure:"client_secret"`
}

func InitConfig(name string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetConfigName(name)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetDefault("http_port", 3000)
	v.SetDefault("env", "development")
	v.SetDefault("public_dir", "public")
	v.SetDefault("leniency_seconds", 300)
	v.SetDefault("strict_types", false)
	v.SetDefault("store_backend", "sqlite")
	v.SetDefault("sqlite_path", "canvacast.sqlite")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("authorize_url", "https://www.canva.com/apps/oauth/authorize")
	v.SetDefault("configured_url", "https://www.canva.com/apps/configured")
	v.SetDefault("server_addr", "localhost:3000")
	v.BindEnv("client_secret", "CLIENT_SECRET")
	v.BindEnv("http_port", "PORT")
	v.BindEnv("env", "NODE_ENV", "ENV")
	v.BindEnv("oauth_client_id", "CLIENT_ID")
	v.BindEnv("jwt_secret", "JWT_SECRET")
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
		// env vars and defaults carry the whole config when no file exists
		log.Printf("no %s config file, using environment only", name)
	}
	return v, nil
}

func GetServerConfig() (*ServerConfig, error) {
	v, err := InitConfig("canvacast")
	if err != nil {
		return nil, err
	}
	var cfg ServerConfig
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func GetClientConfig() (*ClientConfig, error) {
	v, err := InitConfig("canvacast")
	if err != nil {
		return nil, err
	}
	var cfg ClientConfig
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on a missing or malformed signing secret so a broken
// deployment dies at startup instead of rejecting every request.
func (c *ServerConfig) Validate() error {
	if c.ClientSecret == "" {
		return errors.New("CLIENT_SECRET is not set")
	}
	if _, err := base64.StdEncoding.DecodeString(c.ClientSecret); err != nil {
		return fmt.Errorf("CLIENT_SECRET is not valid base64: %w", err)
	}
	return nil
}

// SecretKey returns the raw HMAC key bytes.
func (c *ServerConfig) SecretKey() []byte {
	key, _ := base64.StdEncoding.DecodeString(c.ClientSecret)
	return key
}
