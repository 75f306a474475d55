package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	filestorage "github.com/galaplate/fixture/file-storage"
	fsconfig "github.com/galaplate/fixture/file-storage/config"
	"github.com/galaplate/fixture/file-storage/providers"
)

// Registry manages file storage provider registration and access
type Registry struct {
	mu              sync.RWMutex
	defaultProvider string
	providers       map[string]filestorage.Provider
}

// New creates a new Registry instance
func New(defaultProvider string) *Registry {
	return &Registry{
		defaultProvider: defaultProvider,
		providers:       make(map[string]filestorage.Provider),
	}
}

// FromConfig creates a provider for every configured driver
func FromConfig(cfg *fsconfig.Config) (*Registry, error) {
	r := New(cfg.Default)

	for _, name := range cfg.Names() {
		switch d := cfg.Drivers[name].(type) {
		case *fsconfig.LocalConfig:
			local, err := providers.NewLocalStorage(d.Path)
			if err != nil {
				return nil, err
			}
			r.RegisterProvider(name, local)
		case *fsconfig.S3Config:
			r.RegisterProvider(name, providers.NewS3Storage(providers.NewS3Client(*d), *d))
		case *fsconfig.GoogleDriveConfig:
			service, err := providers.NewGoogleDriveService(context.Background(), *d)
			if err != nil {
				return nil, err
			}
			r.RegisterProvider(name, providers.NewGoogleDriveStorage(service, d.FolderID))
		default:
			return nil, fmt.Errorf("unsupported filesystem driver: %s", d.Driver())
		}
	}

	if _, err := r.GetDefaultProvider(); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterProvider registers a new storage provider
func (r *Registry) RegisterProvider(name string, provider filestorage.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

// GetProvider returns a storage provider by name
func (r *Registry) GetProvider(name string) (filestorage.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if provider, exists := r.providers[name]; exists {
		return provider, nil
	}
	return nil, fmt.Errorf("provider not found: %s", name)
}

// GetDefaultProvider returns the default storage provider
func (r *Registry) GetDefaultProvider() (filestorage.Provider, error) {
	r.mu.RLock()
	name := r.defaultProvider
	r.mu.RUnlock()
	return r.GetProvider(name)
}

// SetDefaultProvider sets the default storage provider
func (r *Registry) SetDefaultProvider(name string) error {
	if _, err := r.GetProvider(name); err != nil {
		return err
	}
	r.mu.Lock()
	r.defaultProvider = name
	r.mu.Unlock()
	return nil
}

// Names returns registered provider names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
