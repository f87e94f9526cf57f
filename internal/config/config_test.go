package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_VERTEX_PROJECT_ID", "test-project")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "credentials.json")
	t.Setenv("S3_ACCESS_KEY", "access")
	t.Setenv("S3_SECRET_KEY", "secret")
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_ENDPOINT_URL", "https://s3.example.com")
	t.Setenv("S3_PUBLIC_LINK", "https://cdn.example.com/")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("IMAGE_OUTPUT_FORMAT", "")
	t.Setenv("MAX_REFERENCE_IMAGES", "")
	t.Setenv("S3_FOLDER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != defaultPort {
		t.Fatalf("Port = %q, want %q", cfg.Port, defaultPort)
	}
	if cfg.OutputFormat != defaultOutputFormat {
		t.Fatalf("OutputFormat = %q, want %q", cfg.OutputFormat, defaultOutputFormat)
	}
	if cfg.MaxReferenceImages != defaultMaxReferenceImages {
		t.Fatalf("MaxReferenceImages = %d, want %d", cfg.MaxReferenceImages, defaultMaxReferenceImages)
	}
	if cfg.StorageFolder != defaultStorageFolder {
		t.Fatalf("StorageFolder = %q, want %q", cfg.StorageFolder, defaultStorageFolder)
	}
}

func TestLoadTrimsTrailingSlashFromPublicURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_PUBLIC_LINK", "https://cdn.example.com/assets/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StoragePublicURL != "https://cdn.example.com/assets" {
		t.Fatalf("StoragePublicURL = %q, want no trailing slash", cfg.StoragePublicURL)
	}
}

func TestLoadResolvesGoogleCredentialsToAbsolutePath(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "relative/credentials.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GoogleCredentials == "relative/credentials.json" {
		t.Fatal("expected GoogleCredentials to be resolved to an absolute path")
	}
}

func TestLoadFailsFastOnMissingRequiredCredential(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected Load to fail when OPENAI_API_KEY is missing")
	}
}

func TestLoadDoesNotRequireFallbackKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FAL_API_KEY", "")

	if _, err := Load(); err != nil {
		t.Fatalf("Load should not fail when FAL_API_KEY is absent: %v", err)
	}
}

func TestLoadDefaultsFallbackAspectRatio(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FAL_GEMINI_ASPECT_RATIO", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ImageFallbackAspectRatio != defaultFallbackAspect {
		t.Fatalf("ImageFallbackAspectRatio = %q, want %q", cfg.ImageFallbackAspectRatio, defaultFallbackAspect)
	}
}
