package utils

import (
	"os"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	godotenv.Load()
}

// AppHost is the public host links and QR codes point at.
func AppHost() string {
	if host := os.Getenv("App_Host"); host != "" {
		return host
	}
	return "localhost:8080"
}

func Production() bool {
	return os.Getenv("APP_ENV") == "production"
}
