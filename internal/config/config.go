package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret string
	BcryptCost int

	CORSOrigins     []string
	CORSCredentials bool
}

func FromEnv() Config {
	return Config{
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		AuthSecret:      envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174"),
		CORSCredentials: envBool("CORS_CREDENTIALS", true),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
