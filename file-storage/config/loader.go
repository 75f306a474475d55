package config

import (
	"os"

	appconfig "github.com/galaplate/fixture/config"
)

const (
	DefaultLocalPath  = "storage/fixtures"
	DefaultPathPrefix = "fixtures"
)

// Load builds the filesystem configuration from the "filesystems" config file,
// falling back to environment variables for unset keys
func Load(m *appconfig.Manager) (*Config, error) {
	get := func(path, envVar string) string {
		if v := m.GetString(path); v != "" {
			return v
		}
		return os.Getenv(envVar)
	}

	cfg := New()

	driver := get("filesystems.default", "FILESYSTEM_DRIVER")
	if driver == "" {
		driver = "local"
	}
	cfg.SetDefault(driver)

	cfg.WithLocalDriver(get("filesystems.disks.local.path", "FILESYSTEM_LOCAL_PATH"))

	bucket := get("filesystems.disks.s3.bucket", "AWS_BUCKET")
	if bucket != "" || driver == "s3" {
		cfg.WithS3Driver(&S3Config{
			Region:       get("filesystems.disks.s3.region", "AWS_REGION"),
			Bucket:       bucket,
			BaseURL:      get("filesystems.disks.s3.url", "AWS_BASE_URL"),
			Endpoint:     get("filesystems.disks.s3.endpoint", "AWS_ENDPOINT"),
			AccessKey:    get("filesystems.disks.s3.key", "AWS_ACCESS_KEY_ID"),
			SecretKey:    get("filesystems.disks.s3.secret", "AWS_SECRET_ACCESS_KEY"),
			PathPrefix:   get("filesystems.disks.s3.path_prefix", "AWS_PATH_PREFIX"),
			UsePathStyle: m.GetBool("filesystems.disks.s3.use_path_style"),
		})
	}

	folderID := get("filesystems.disks.google_drive.folder_id", "GOOGLE_DRIVE_FOLDER_ID")
	if folderID != "" || driver == "google_drive" {
		cfg.WithGoogleDriveDriver(&GoogleDriveConfig{
			ServiceAccountFile: get("filesystems.disks.google_drive.service_account_file", "GOOGLE_SERVICE_ACCOUNT_FILE"),
			FolderID:           folderID,
			Endpoint:           get("filesystems.disks.google_drive.endpoint", "GOOGLE_DRIVE_ENDPOINT"),
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
