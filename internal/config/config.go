package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Config struct {
	Environment    string   // ENV: production, development, etc.
	Port           string
	Host           string   // Raw HOST env (e.g. https://api.lebdoc.com)
	AllowedHost    string   // Hostname only for strict host check (production only)
	PublicURL      string   // frontend base used for referral and share links
	AllowedOrigins []string

	// StoreDriver selects the key-value backend: memory, redis or postgres.
	StoreDriver string
	RedisURI    string
	PostgresURI string
	MongoURI    string // empty keeps the analytics event log in memory

	EncryptionKey string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AdminIdentifier string
	AdminPassword   string
	GuestIdentifier string
	GuestPassword   string

	MonthlyPrice        decimal.Decimal
	YearlyPrice         decimal.Decimal
	AffiliateCommission decimal.Decimal
	MonthlyPriceID      string
	YearlyPriceID       string

	SchedulerSpec      string
	DefaultDoctorImage string
	SeedDoctors        bool
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostname(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:5173"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		Host:           host,
		AllowedHost:    allowedHost,
		PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", getEnv("FRONTEND_URL", "http://localhost:5173")), "/"),
		AllowedOrigins: allowedOrigins,

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "memory")),
		RedisURI:    getEnv("REDIS_URI", "redis://localhost:6379/0"),
		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/lebdoc?sslmode=disable"),
		MongoURI:    getEnv("MONGODB_URI", ""),

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		AdminIdentifier: getEnv("ADMIN_IDENTIFIER", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin"),
		GuestIdentifier: getEnv("GUEST_IDENTIFIER", "guest"),
		GuestPassword:   getEnv("GUEST_PASSWORD", "guest"),

		MonthlyPrice:        getDecimal("MONTHLY_PRICE", "49"),
		YearlyPrice:         getDecimal("YEARLY_PRICE", "499"),
		AffiliateCommission: getDecimal("AFFILIATE_COMMISSION", "0.2"),
		MonthlyPriceID:      getEnv("STRIPE_MONTHLY_PRICE_ID", "price_monthly"),
		YearlyPriceID:       getEnv("STRIPE_YEARLY_PRICE_ID", "price_yearly"),

		SchedulerSpec:      getEnv("SCHEDULER_SPEC", "@hourly"),
		DefaultDoctorImage: getEnv("DEFAULT_DOCTOR_IMAGE", "https://images.unsplash.com/photo-1559839734-2b71ea197ec2?auto=format&fit=crop&q=80"),
		SeedDoctors:        getBool("SEED_DOCTORS", true),
	}
}

// hostname strips scheme, path and port from a URL-ish HOST value.
func hostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// CloudinaryConfigured reports whether uploads can be served.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDecimal(key, defaultValue string) decimal.Decimal {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.RequireFromString(defaultValue)
	}
	return d
}
