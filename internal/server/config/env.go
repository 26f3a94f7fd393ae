package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/flagx"
	"github.com/joho/godotenv"
)

// defaultEnvFile is read when present and no -env flag is given.
const defaultEnvFile = ".env"

// parseEnv overlays values from environment variables. A dotenv file named by
// -env/-envfile (or ./.env when it exists) is loaded first; variables that are
// already set in the process environment are not overridden by the file.
//
// Recognized variables:
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_DSN, REDIS_ADDR, LOG_FORMAT,
//	JWT_SECRET, JWT_REFRESH_SECRET, JWT_VERIFICATION_SECRET, JWT_RESET_SECRET,
//	ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL, VERIFICATION_TOKEN_TTL, RESET_TOKEN_TTL, RESET_REQUEST_TTL,
//	PUBLIC_URL, FRONTEND_URL,
//	SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, MAIL_FROM,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	HIDE_UNKNOWN_RESET_EMAILS, LISTING_POLICY (e.g. "ROLE_ADMIN=all,ROLE_PARTICIPANT=participating").
//
// The function panics if an explicitly requested dotenv file cannot be read.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.RedisAddr, "REDIS_ADDR")
	setString(&config.LogFormat, "LOG_FORMAT")

	setString(&config.AccessTokenSecret, "JWT_SECRET")
	setString(&config.RefreshTokenSecret, "JWT_REFRESH_SECRET")
	setString(&config.VerificationTokenSecret, "JWT_VERIFICATION_SECRET")
	setString(&config.ResetTokenSecret, "JWT_RESET_SECRET")

	setDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	setDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	setDuration(&config.VerificationTokenValidityDuration, "VERIFICATION_TOKEN_TTL")
	setDuration(&config.ResetTokenValidityDuration, "RESET_TOKEN_TTL")
	setDuration(&config.ResetRequestValidityDuration, "RESET_REQUEST_TTL")

	setString(&config.PublicBaseURL, "PUBLIC_URL")
	setString(&config.FrontendURL, "FRONTEND_URL")

	setString(&config.SMTPHost, "SMTP_HOST")
	setInt(&config.SMTPPort, "SMTP_PORT")
	setString(&config.SMTPUser, "SMTP_USER")
	setString(&config.SMTPPassword, "SMTP_PASS")
	setString(&config.MailFrom, "MAIL_FROM")

	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	setBool(&config.HideUnknownResetEmails, "HIDE_UNKNOWN_RESET_EMAILS")

	if v, ok := os.LookupEnv("LISTING_POLICY"); ok {
		config.ListingPolicy = parsePolicyList(v)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// parsePolicyList turns "ROLE_A=all, ROLE_B=own" into a map.
func parsePolicyList(v string) map[string]string {
	policy := map[string]string{}
	for _, part := range strings.Split(v, ",") {
		role, scope, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || role == "" {
			continue
		}
		policy[strings.TrimSpace(role)] = strings.TrimSpace(scope)
	}
	return policy
}
