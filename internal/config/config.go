package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port          string `mapstructure:"port"`
		Env           string `mapstructure:"env"`
		PublicBaseURL string `mapstructure:"public_base_url"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers         []string      `mapstructure:"brokers"`
		GroupID         string        `mapstructure:"group_id"`
		RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
		RetryMaxBackoff time.Duration `mapstructure:"retry_max_backoff"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
	QR struct {
		Endpoint string `mapstructure:"endpoint"`
		Size     int    `mapstructure:"size"`
	} `mapstructure:"qr"`
	Public struct {
		CacheTTL  time.Duration `mapstructure:"cache_ttl"`
		RateLimit float64       `mapstructure:"rate_limit"`
		RateBurst int           `mapstructure:"rate_burst"`
	} `mapstructure:"public"`
	Profile struct {
		UpdateLockTTL time.Duration `mapstructure:"update_lock_ttl"`
	} `mapstructure:"profile"`
}

// LoadConfig reads .env, then config.yaml from paths (default "."), then the
// environment. Later sources win.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err = godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.public_base_url", "PUBLIC_BASE_URL")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("jaeger.otlp_endpoint", "OTLP_ENDPOINT")
	v.BindEnv("qr.endpoint", "QR_ENDPOINT")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	err = v.Unmarshal(&cfg)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.public_base_url", "http://localhost:5173")
	v.SetDefault("kafka.group_id", "profile-events-group")
	v.SetDefault("kafka.retry_backoff", time.Second)
	v.SetDefault("kafka.retry_max_backoff", time.Minute)
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("qr.endpoint", "https://api.qrserver.com/v1/create-qr-code/")
	v.SetDefault("qr.size", 200)
	v.SetDefault("public.cache_ttl", 10*time.Minute)
	v.SetDefault("public.rate_limit", 5.0)
	v.SetDefault("public.rate_burst", 20)
	v.SetDefault("profile.update_lock_ttl", 30*time.Second)
}
