// Package config loads process-wide configuration from the environment.
// It is read once at startup and treated as immutable thereafter.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"imageflow/internal/domain"
)

// Config holds every recognized option from spec.md §3 "Configuration".
type Config struct {
	Port string

	VisionModelAPIKey  string
	VisionModelBaseURL string
	VisionModelID      string

	ImagePrimaryProject string
	ImagePrimaryRegion  string
	GoogleCredentials   string // absolute path, resolved at load time

	ImageFallbackAPIKey      string
	ImageFallbackEndpoint    string
	ImageFallbackModelID     string
	ImageFallbackAspectRatio domain.AspectRatio

	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageEndpoint  string
	StoragePublicURL string
	StorageFolder    string

	OutputFormat        string
	MaxReferenceImages  int
	SystemPromptImage   string
	SystemPromptEditor  string
}

const (
	defaultPort               = "4000"
	defaultOutputFormat       = "png"
	defaultMaxReferenceImages = 2
	defaultStorageFolder      = "internaluse"
	defaultFallbackAspect     = domain.AspectRatio1x1

	defaultSystemPromptImage = `You are a meticulous visual analyst. Examine the supplied image and write a single, detailed re-creation prompt that a text-to-image model could use to reproduce it faithfully: subject, composition, lighting, color palette, camera angle, background, and mood. Respond with the prompt text only, no preamble, no markdown.`

	defaultSystemPromptEditor = `You are a precise prompt editor. Given a base description of an image and a set of user instructions (optionally illustrated by reference images), rewrite the base description into a new prompt that incorporates the requested changes while preserving everything the user did not ask to change. Respond with the prompt text only unless asked to return JSON.`
)

// Load reads configuration from the environment, optionally seeded from a
// local .env / .env.local file, and fails fast when a required credential
// is missing. The fallback image provider's key is not checked here — its
// absence is a lazy failure, detected only when the synthesis client
// actually needs to fall back.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local", ".env")

	cfg := &Config{
		Port: getEnv("PORT", defaultPort),

		VisionModelAPIKey:  os.Getenv("OPENAI_API_KEY"),
		VisionModelBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		VisionModelID:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		ImagePrimaryProject: os.Getenv("GOOGLE_VERTEX_PROJECT_ID"),
		ImagePrimaryRegion:  getEnv("GOOGLE_VERTEX_LOCATION", "us-central1"),
		GoogleCredentials:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		ImageFallbackAPIKey:   os.Getenv("FAL_API_KEY"),
		ImageFallbackEndpoint: getEnv("FAL_GEMINI_ENDPOINT", "https://fal.run/fal-ai/gemini-25-flash-image"),
		ImageFallbackModelID:  getEnv("FAL_GEMINI_MODEL_ID", "gemini-2.5-flash-image"),

		StorageAccessKey: os.Getenv("S3_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("S3_SECRET_KEY"),
		StorageBucket:    os.Getenv("S3_BUCKET_NAME"),
		StorageEndpoint:  os.Getenv("S3_ENDPOINT_URL"),
		StoragePublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_LINK"), "/"),
		StorageFolder:    getEnv("S3_FOLDER", defaultStorageFolder),

		OutputFormat:       getEnv("IMAGE_OUTPUT_FORMAT", defaultOutputFormat),
		MaxReferenceImages: getEnvInt("MAX_REFERENCE_IMAGES", defaultMaxReferenceImages),
		SystemPromptImage:  getEnv("SYSTEM_PROMPT_IMAGE_UNDERSTAND", defaultSystemPromptImage),
		SystemPromptEditor: getEnv("SYSTEM_PROMPT_PROMPT_EDITOR", defaultSystemPromptEditor),
	}

	fallbackAspect, ok := domain.ParseAspectRatio(getEnv("FAL_GEMINI_ASPECT_RATIO", string(defaultFallbackAspect)))
	if !ok || fallbackAspect == "" {
		fallbackAspect = defaultFallbackAspect
	}
	cfg.ImageFallbackAspectRatio = fallbackAspect

	if cfg.GoogleCredentials != "" {
		abs, err := filepath.Abs(cfg.GoogleCredentials)
		if err != nil {
			return nil, fmt.Errorf("%w: resolving GOOGLE_APPLICATION_CREDENTIALS: %v", domain.ErrConfiguration, err)
		}
		cfg.GoogleCredentials = abs
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.VisionModelAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.ImagePrimaryProject == "" {
		missing = append(missing, "GOOGLE_VERTEX_PROJECT_ID")
	}
	if c.GoogleCredentials == "" {
		missing = append(missing, "GOOGLE_APPLICATION_CREDENTIALS")
	}
	if c.StorageAccessKey == "" {
		missing = append(missing, "S3_ACCESS_KEY")
	}
	if c.StorageSecretKey == "" {
		missing = append(missing, "S3_SECRET_KEY")
	}
	if c.StorageBucket == "" {
		missing = append(missing, "S3_BUCKET_NAME")
	}
	if c.StorageEndpoint == "" {
		missing = append(missing, "S3_ENDPOINT_URL")
	}
	if c.StoragePublicURL == "" {
		missing = append(missing, "S3_PUBLIC_LINK")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required environment variables: %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
