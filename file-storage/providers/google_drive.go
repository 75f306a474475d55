package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	filestorage "github.com/galaplate/fixture/file-storage"
	fsconfig "github.com/galaplate/fixture/file-storage/config"
)

const driveFileFields = "id, name, size, mimeType, webViewLink"

// GoogleDriveStorage implements Provider on a Google Drive folder. Keys are
// file names inside the folder.
type GoogleDriveStorage struct {
	service  *drive.Service
	folderID string
}

var _ filestorage.Provider = (*GoogleDriveStorage)(nil)

// NewGoogleDriveService creates a Drive client from cfg. Extra options are
// applied after the ones derived from cfg.
func NewGoogleDriveService(ctx context.Context, cfg fsconfig.GoogleDriveConfig, opts ...option.ClientOption) (*drive.Service, error) {
	var base []option.ClientOption
	if cfg.Endpoint != "" {
		base = append(base, option.WithEndpoint(cfg.Endpoint))
	}

	if cfg.ServiceAccountFile != "" {
		jsonData, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account file: %w", err)
		}
		base = append(base, option.WithCredentialsJSON(jsonData), option.WithScopes(drive.DriveScope))
	} else {
		base = append(base, option.WithoutAuthentication())
	}

	service, err := drive.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return service, nil
}

// NewGoogleDriveStorage creates a new Google Drive storage provider
func NewGoogleDriveStorage(service *drive.Service, folderID string) *GoogleDriveStorage {
	return &GoogleDriveStorage{service: service, folderID: folderID}
}

// Put creates the file, or replaces the content of an existing file with the same name
func (gd *GoogleDriveStorage) Put(ctx context.Context, key string, data []byte, contentType string) (filestorage.Object, error) {
	if key == "" {
		return filestorage.Object{}, fmt.Errorf("invalid_file_path")
	}

	existing, err := gd.lookup(ctx, key)
	if err != nil {
		return filestorage.Object{}, err
	}

	media := bytes.NewReader(data)
	var res *drive.File
	if existing != nil {
		res, err = gd.service.Files.Update(existing.Id, &drive.File{MimeType: contentType}).
			Media(media, googleapi.ContentType(contentType)).
			Fields(driveFileFields).
			Context(ctx).
			Do()
	} else {
		file := &drive.File{Name: key, MimeType: contentType}
		if gd.folderID != "" {
			file.Parents = []string{gd.folderID}
		}
		res, err = gd.service.Files.Create(file).
			Media(media, googleapi.ContentType(contentType)).
			Fields(driveFileFields).
			Context(ctx).
			Do()
	}
	if err != nil {
		return filestorage.Object{}, fmt.Errorf("google_drive upload %s: %w", key, err)
	}

	return filestorage.Object{
		Key:         key,
		Path:        gd.link(res),
		Size:        int64(len(data)),
		ContentType: contentType,
		StorageType: gd.Name(),
	}, nil
}

// Get downloads the file content
func (gd *GoogleDriveStorage) Get(ctx context.Context, key string) ([]byte, error) {
	file, err := gd.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, filestorage.ErrNotFound
	}

	resp, err := gd.service.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		if isDriveNotFound(err) {
			return nil, filestorage.ErrNotFound
		}
		return nil, fmt.Errorf("google_drive download %s: %w", key, err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// Delete removes a file from Google Drive
func (gd *GoogleDriveStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("invalid_file_path")
	}

	file, err := gd.lookup(ctx, key)
	if err != nil || file == nil {
		return err
	}

	if err := gd.service.Files.Delete(file.Id).Context(ctx).Do(); err != nil && !isDriveNotFound(err) {
		return fmt.Errorf("google_drive delete %s: %w", key, err)
	}
	return nil
}

// Exists checks if a file with the key's name is in the folder
func (gd *GoogleDriveStorage) Exists(ctx context.Context, key string) (bool, error) {
	file, err := gd.lookup(ctx, key)
	return file != nil, err
}

// Name returns the provider name
func (gd *GoogleDriveStorage) Name() string {
	return "google_drive"
}

// lookup returns the newest non-trashed file named key, or nil.
func (gd *GoogleDriveStorage) lookup(ctx context.Context, key string) (*drive.File, error) {
	q := fmt.Sprintf("name = '%s' and trashed = false", escapeDriveQuery(key))
	if gd.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeDriveQuery(gd.folderID))
	}

	list, err := gd.service.Files.List().
		Q(q).
		OrderBy("modifiedTime desc").
		PageSize(1).
		Fields("files(" + driveFileFields + ")").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("google_drive lookup %s: %w", key, err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	return list.Files[0], nil
}

func (gd *GoogleDriveStorage) link(f *drive.File) string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return fmt.Sprintf("https://drive.google.com/uc?id=%s&export=download", f.Id)
}

var driveQueryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeDriveQuery(s string) string {
	return driveQueryEscaper.Replace(s)
}

func isDriveNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
