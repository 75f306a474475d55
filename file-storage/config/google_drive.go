package config

import (
	"fmt"
	"os"
)

// GoogleDriveConfig holds Google Drive configuration
type GoogleDriveConfig struct {
	ServiceAccountFile string // Path to service account JSON credentials
	FolderID           string // Folder fixture files are created in
	Endpoint           string // API base URL override; requests are unauthenticated when set without credentials
}

// Driver returns the driver name
func (gd *GoogleDriveConfig) Driver() string {
	return "google_drive"
}

// Validate validates Google Drive configuration
func (gd *GoogleDriveConfig) Validate() error {
	if gd.FolderID == "" {
		return fmt.Errorf("google_drive driver: folder_id is required")
	}
	if gd.ServiceAccountFile == "" {
		if gd.Endpoint == "" {
			return fmt.Errorf("google_drive driver: service_account_file is required")
		}
		return nil
	}
	if _, err := os.Stat(gd.ServiceAccountFile); err != nil {
		return fmt.Errorf("google_drive driver: service_account_file not found: %w", err)
	}
	return nil
}

// WithGoogleDriveDriver adds a Google Drive driver configuration
func (c *Config) WithGoogleDriveDriver(gd *GoogleDriveConfig) *Config {
	c.Drivers["google_drive"] = gd
	return c
}
