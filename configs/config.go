package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type GoogleDrive struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
}

type Config struct {
	PostgresURI       string
	FacebookAppID     string
	FacebookAppSecret string
	GraphAPIVersion   string
	GroqAPIKey        string
	StabilityAPIKey   string
	R2                R2
	GoogleDrive       GoogleDrive
	FrontendURL       string
	SecretKey         string
	CookieName        string
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:       getEnv("POSTGRES_URI", ""),
		FacebookAppID:     getEnv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret: getEnv("FACEBOOK_APP_SECRET", ""),
		GraphAPIVersion:   getEnv("GRAPH_API_VERSION", "v18.0"),
		GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
		StabilityAPIKey:   getEnv("STABILITY_API_KEY", ""),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		GoogleDrive: GoogleDrive{
			ClientID:     getEnv("GOOGLE_DRIVE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_DRIVE_CLIENT_SECRET", ""),
			AccessToken:  getEnv("GOOGLE_DRIVE_ACCESS_TOKEN", ""),
			RefreshToken: getEnv("GOOGLE_DRIVE_REFRESH_TOKEN", ""),
		},
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:   getEnv("SECRET_KEY", ""),
		CookieName:  getEnv("COOKIE_NAME", "access_token"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
