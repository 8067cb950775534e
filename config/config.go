package config

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samvaad/pkg/configs"
	"github.com/spf13/viper"
)

// Application config structure
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Secret   string `mapstructure:"secret" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogPath  string `mapstructure:"log_path"`
	Env      string `mapstructure:"env"`

	PostgresConfig configs.PostgresConfig `mapstructure:"postgres" validate:"required"`
	RedisConfig    configs.RedisConfig    `mapstructure:"redis"`

	GoogleConfig  GoogleConfig  `mapstructure:"google"`
	GeminiConfig  GeminiConfig  `mapstructure:"gemini" validate:"required"`
	OpenAIConfig  OpenAIConfig  `mapstructure:"openai"`
	RelayConfig   RelayConfig   `mapstructure:"relay" validate:"required"`
	HistoryConfig HistoryConfig `mapstructure:"history" validate:"required"`
}

// GoogleConfig carries credentials for the speech and text-to-speech clients.
type GoogleConfig struct {
	ApiKey            string `mapstructure:"api_key"`
	ProjectId         string `mapstructure:"project_id"`
	ServiceAccountKey string `mapstructure:"service_account_key"`
	SampleRateHertz   int    `mapstructure:"sample_rate_hertz" validate:"required"`
	ListenModel       string `mapstructure:"listen_model"`
}

type GeminiConfig struct {
	ApiKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model" validate:"required"`
}

type OpenAIConfig struct {
	ApiKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// RelayConfig tunes the turn-taking behaviour of every session.
type RelayConfig struct {
	SilenceTimeoutMs     int    `mapstructure:"silence_timeout_ms" validate:"required,gt=0"`
	MinSpeechLength      int    `mapstructure:"min_speech_length" validate:"gte=0"`
	InitialParty         string `mapstructure:"initial_party" validate:"required,oneof=clinician patient"`
	ClinicianLanguage    string `mapstructure:"clinician_language" validate:"required"`
	PatientLanguage      string `mapstructure:"patient_language" validate:"required"`
	AutoFlow             bool   `mapstructure:"auto_flow"`
	TranslationProvider  string `mapstructure:"translation_provider" validate:"required,oneof=google openai"`
	TranslationEndpoint  string `mapstructure:"translation_endpoint" validate:"required"`
	TranslationTimeoutMs int    `mapstructure:"translation_timeout_ms" validate:"required,gt=0"`
	TranslationCacheTTL  int    `mapstructure:"translation_cache_ttl_sec" validate:"gte=0"`
}

type HistoryConfig struct {
	// EncryptionKey is a hex encoded 32 byte AES key.
	EncryptionKey string `mapstructure:"encryption_key" validate:"required,hexadecimal,len=64"`
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil {
		log.Printf("Reading from env varaibles.")
	}
	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// setting all default values
	// keeping watch on https://github.com/spf13/viper/issues/188

	v.SetDefault("SERVICE_NAME", "consultation-relay")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("SECRET", "")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9090)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")
	v.SetDefault("ENV", "development")

	v.SetDefault("POSTGRES__HOST", "localhost")
	v.SetDefault("POSTGRES__PORT", 5432)
	v.SetDefault("POSTGRES__DB_NAME", "<>")
	v.SetDefault("POSTGRES__AUTH__USER", "<>")
	v.SetDefault("POSTGRES__AUTH__PASSWORD", "<>")
	v.SetDefault("POSTGRES__MAX_OPEN_CONNECTION", 10)
	v.SetDefault("POSTGRES__MAX_IDEAL_CONNECTION", 10)
	v.SetDefault("POSTGRES__SSL_MODE", "disable")
	v.SetDefault("POSTGRES__DRIVER", "postgres")
	v.SetDefault("POSTGRES__SQLITE_PATH", "")

	v.SetDefault("REDIS__HOST", "")
	v.SetDefault("REDIS__PORT", 6379)
	v.SetDefault("REDIS__PASSWORD", "")
	v.SetDefault("REDIS__DB", 0)
	v.SetDefault("REDIS__MAX_CONNECTION", 10)

	v.SetDefault("GOOGLE__API_KEY", "")
	v.SetDefault("GOOGLE__PROJECT_ID", "")
	v.SetDefault("GOOGLE__SERVICE_ACCOUNT_KEY", "")
	v.SetDefault("GOOGLE__SAMPLE_RATE_HERTZ", 16000)
	v.SetDefault("GOOGLE__LISTEN_MODEL", "latest_long")

	v.SetDefault("GEMINI__API_KEY", "")
	v.SetDefault("GEMINI__MODEL", "gemini-2.5-flash-lite")
	v.SetDefault("OPENAI__API_KEY", "")
	v.SetDefault("OPENAI__MODEL", "gpt-4o-mini")

	v.SetDefault("RELAY__SILENCE_TIMEOUT_MS", 5000)
	v.SetDefault("RELAY__MIN_SPEECH_LENGTH", 2)
	v.SetDefault("RELAY__INITIAL_PARTY", "clinician")
	v.SetDefault("RELAY__CLINICIAN_LANGUAGE", "en-US")
	v.SetDefault("RELAY__PATIENT_LANGUAGE", "hi-IN")
	v.SetDefault("RELAY__AUTO_FLOW", true)
	v.SetDefault("RELAY__TRANSLATION_PROVIDER", "google")
	v.SetDefault("RELAY__TRANSLATION_ENDPOINT", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("RELAY__TRANSLATION_TIMEOUT_MS", 8000)
	v.SetDefault("RELAY__TRANSLATION_CACHE_TTL_SEC", 3600)

	v.SetDefault("HISTORY__ENCRYPTION_KEY", "")
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
