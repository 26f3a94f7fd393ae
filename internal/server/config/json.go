package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/flagx"
	"github.com/chouaib-skitou/Festivio/internal/timex"
)

// JsonConfig mirrors Config for JSON decoding. Durations accept either Go
// duration strings ("15m") or integer nanoseconds via timex.Duration.
type JsonConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	DatabaseDSN      string `json:"database_dsn"`
	RedisAddr        string `json:"redis_addr"`
	LogFormat        string `json:"log_format"`

	AccessTokenSecret       string `json:"access_token_secret"`
	RefreshTokenSecret      string `json:"refresh_token_secret"`
	VerificationTokenSecret string `json:"verification_token_secret"`
	ResetTokenSecret        string `json:"reset_token_secret"`

	AccessTokenValidityDuration       timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      timex.Duration `json:"refresh_token_validity_duration"`
	VerificationTokenValidityDuration timex.Duration `json:"verification_token_validity_duration"`
	ResetTokenValidityDuration        timex.Duration `json:"reset_token_validity_duration"`
	ResetRequestValidityDuration      timex.Duration `json:"reset_request_validity_duration"`

	PublicBaseURL string `json:"public_base_url"`
	FrontendURL   string `json:"frontend_url"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	MailFrom     string `json:"mail_from"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	HideUnknownResetEmails *bool             `json:"hide_unknown_reset_emails"`
	ListingPolicy          map[string]string `json:"listing_policy"`
}

// parseJson loads the JSON file named by -c/-config, if any, and copies every
// field present in it over the target Config. Absent fields keep their
// current values. The function panics on unreadable files or invalid JSON.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlayString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.RedisAddr, c.RedisAddr)
	overlayString(&config.LogFormat, c.LogFormat)

	overlayString(&config.AccessTokenSecret, c.AccessTokenSecret)
	overlayString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	overlayString(&config.VerificationTokenSecret, c.VerificationTokenSecret)
	overlayString(&config.ResetTokenSecret, c.ResetTokenSecret)

	overlayDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	overlayDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	overlayDuration(&config.VerificationTokenValidityDuration, c.VerificationTokenValidityDuration)
	overlayDuration(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration)
	overlayDuration(&config.ResetRequestValidityDuration, c.ResetRequestValidityDuration)

	overlayString(&config.PublicBaseURL, c.PublicBaseURL)
	overlayString(&config.FrontendURL, c.FrontendURL)

	overlayString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	overlayString(&config.SMTPUser, c.SMTPUser)
	overlayString(&config.SMTPPassword, c.SMTPPassword)
	overlayString(&config.MailFrom, c.MailFrom)

	overlayString(&config.S3RootUser, c.S3RootUser)
	overlayString(&config.S3RootPassword, c.S3RootPassword)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.HideUnknownResetEmails != nil {
		config.HideUnknownResetEmails = *c.HideUnknownResetEmails
	}
	if len(c.ListingPolicy) > 0 {
		config.ListingPolicy = c.ListingPolicy
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
