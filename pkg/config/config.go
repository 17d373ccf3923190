package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Wizard       WizardConfig
	Media        MediaConfig
	GCP          GCPConfig
	GCS          GCSConfig
	VINDecode    VINDecodeConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEALERHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"DEALERHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEALERHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEALERHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DEALERHUB_DB_DSN"`
	Driver string `envconfig:"DEALERHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DEALERHUB_DB_HOST"`
	Port     int    `envconfig:"DEALERHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"DEALERHUB_DB_USER"`
	Password string `envconfig:"DEALERHUB_DB_PASSWORD"`
	Name     string `envconfig:"DEALERHUB_DB_NAME"`
	SSLMode  string `envconfig:"DEALERHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEALERHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEALERHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEALERHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALERHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALERHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEALERHUB_REDIS_ADDR"`
	Password     string        `envconfig:"DEALERHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALERHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALERHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALERHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALERHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALERHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALERHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// WizardConfig tunes the multi-step form sessions. The autosave interval and
// draft TTL were fixed constants historically; they are env-tunable now.
type WizardConfig struct {
	AutosaveInterval time.Duration `envconfig:"DEALERHUB_WIZARD_AUTOSAVE_INTERVAL" default:"30s"`
	DraftTTL         time.Duration `envconfig:"DEALERHUB_WIZARD_DRAFT_TTL" default:"168h"`
	SubmitLockTTL    time.Duration `envconfig:"DEALERHUB_WIZARD_SUBMIT_LOCK_TTL" default:"30s"`
	SessionIdleTTL   time.Duration `envconfig:"DEALERHUB_WIZARD_SESSION_IDLE_TTL" default:"1h"`
}

type MediaConfig struct {
	MaxImageMB int `envconfig:"DEALERHUB_MEDIA_MAX_IMAGE_MB" default:"10"`
	// MaxImagesPerDraft may only tighten the upload gate; the media service
	// clamps values above the draft validator's fixed ceiling.
	MaxImagesPerDraft int           `envconfig:"DEALERHUB_MEDIA_MAX_IMAGES_PER_DRAFT" default:"20"`
	UploadURLExpiry   time.Duration `envconfig:"DEALERHUB_MEDIA_UPLOAD_URL_EXPIRY" default:"15m"`
}

func (m MediaConfig) MaxImageBytes() int64 {
	return int64(m.MaxImageMB) * 1024 * 1024
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DEALERHUB_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DEALERHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DEALERHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"DEALERHUB_GCS_BUCKET_NAME"`
}

type VINDecodeConfig struct {
	BaseURL string        `envconfig:"DEALERHUB_VIN_DECODE_BASE_URL" default:"https://vpic.nhtsa.dot.gov/api"`
	Timeout time.Duration `envconfig:"DEALERHUB_VIN_DECODE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DEALERHUB_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, name := range requiredDBEnvVars {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
