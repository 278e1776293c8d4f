package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	ProviderTwilio = "twilio"
	ProviderVonage = "vonage"
)

type TwilioConfig struct {
	AccountSid       string `mapstructure:"account_sid" validate:"required"`
	AuthToken        string `mapstructure:"auth_token" validate:"required"`
	PhoneNumber      string `mapstructure:"phone_number" validate:"required"`
	ValidateWebhooks bool   `mapstructure:"validate_webhooks"`
}

type VonageConfig struct {
	ApplicationId  string `mapstructure:"application_id" validate:"required"`
	PrivateKeyPath string `mapstructure:"private_key_path" validate:"required,file"`
	PhoneNumber    string `mapstructure:"phone_number" validate:"required"`
}

// CampaignConfig holds the dispatcher defaults applied when a request
// does not override them.
type CampaignConfig struct {
	MaxParallelWorkers int           `mapstructure:"max_parallel_workers" validate:"required,min=1"`
	InterBatchDelay    time.Duration `mapstructure:"inter_batch_delay" validate:"min=0"`
	DefaultBatchSize   int           `mapstructure:"default_batch_size" validate:"required,min=1"`
	CallsPerSecond     float64       `mapstructure:"calls_per_second" validate:"min=0"`
}

// Application config structure
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Env      string `mapstructure:"env"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogFile  string `mapstructure:"log_file"`

	// public URL the provider uses to reach the webhooks
	BaseUrl     string `mapstructure:"base_url" validate:"required,url"`
	CompanyName string `mapstructure:"company_name" validate:"required"`

	TelephonyProvider string       `mapstructure:"telephony_provider" validate:"required,oneof=twilio vonage"`
	Twilio            TwilioConfig `mapstructure:"twilio" validate:"-"`
	Vonage            VonageConfig `mapstructure:"vonage" validate:"-"`

	GoogleCredentialsFile string `mapstructure:"google_credentials_file" validate:"omitempty,file"`

	// formatted like "60-M"; empty disables limiting of the control routes
	ControlRateLimit string `mapstructure:"control_rate_limit"`

	Campaign CampaignConfig `mapstructure:"campaign" validate:"required"`
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
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
		log.Printf("Reading from env varaibles.")
	}
	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// every key needs a default so AutomaticEnv picks it up on Unmarshal
	// keeping watch on https://github.com/spf13/viper/issues/188

	v.SetDefault("SERVICE_NAME", "campaign-api")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("ENV", "development")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 5000)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("BASE_URL", "http://localhost:5000")
	v.SetDefault("COMPANY_NAME", "dowell")
	v.SetDefault("TELEPHONY_PROVIDER", ProviderTwilio)

	v.SetDefault("TWILIO__ACCOUNT_SID", "")
	v.SetDefault("TWILIO__AUTH_TOKEN", "")
	v.SetDefault("TWILIO__PHONE_NUMBER", "")
	v.SetDefault("TWILIO__VALIDATE_WEBHOOKS", false)

	v.SetDefault("VONAGE__APPLICATION_ID", "")
	v.SetDefault("VONAGE__PRIVATE_KEY_PATH", "")
	v.SetDefault("VONAGE__PHONE_NUMBER", "")

	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("CONTROL_RATE_LIMIT", "")

	v.SetDefault("CAMPAIGN__MAX_PARALLEL_WORKERS", 10)
	v.SetDefault("CAMPAIGN__INTER_BATCH_DELAY", "2s")
	v.SetDefault("CAMPAIGN__DEFAULT_BATCH_SIZE", 100)
	v.SetDefault("CAMPAIGN__CALLS_PER_SECOND", 0)
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
	if err = validate.Struct(&config); err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// only the selected provider's credentials are mandatory
	switch config.TelephonyProvider {
	case ProviderTwilio:
		err = validate.Struct(&config.Twilio)
	case ProviderVonage:
		err = validate.Struct(&config.Vonage)
	}
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, fmt.Errorf("%s credentials: %w", config.TelephonyProvider, err)
	}
	return &config, nil
}

func (cfg *AppConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// CallbackURL joins BASE_URL with a webhook path.
func (cfg *AppConfig) CallbackURL(path string) string {
	base := cfg.BaseUrl
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + path
}
