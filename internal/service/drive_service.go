package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/transfer"
)

// DriveService pulls media out of Google Drive for bulk composer imports.
type DriveService interface {
	ListMediaFiles(ctx context.Context, folderID string) ([]transfer.DriveFile, error)
	Download(ctx context.Context, fileID string) ([]byte, string, error)
}

type driveService struct {
	cfg config.Config
}

func NewDriveService(cfg config.Config) DriveService {
	return &driveService{cfg: cfg}
}

func (d *driveService) service(ctx context.Context) (*drive.Service, error) {
	gd := d.cfg.GoogleDrive
	if gd.ClientID == "" || gd.ClientSecret == "" {
		return nil, fmt.Errorf("google drive credentials not configured")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     gd.ClientID,
		ClientSecret: gd.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		Scopes: []string{drive.DriveReadonlyScope},
	}
	token := &oauth2.Token{
		AccessToken:  gd.AccessToken,
		RefreshToken: gd.RefreshToken,
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return svc, nil
}

func (d *driveService) ListMediaFiles(ctx context.Context, folderID string) ([]transfer.DriveFile, error) {
	svc, err := d.service(ctx)
	if err != nil {
		return nil, err
	}

	query := "(mimeType contains 'image/' or mimeType contains 'video/') and trashed = false"
	if folderID != "" {
		query = fmt.Sprintf("'%s' in parents and %s", folderID, query)
	}

	list, err := svc.Files.List().
		Q(query).
		Fields("files(id, name, mimeType, size, thumbnailLink)").
		PageSize(100).
		Context(ctx).
		Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	files := make([]transfer.DriveFile, 0, len(list.Files))
	for _, f := range list.Files {
		files = append(files, transfer.DriveFile{
			ID:            f.Id,
			Name:          f.Name,
			MimeType:      f.MimeType,
			Size:          f.Size,
			ThumbnailLink: f.ThumbnailLink,
		})
	}
	return files, nil
}

func (d *driveService) Download(ctx context.Context, fileID string) ([]byte, string, error) {
	svc, err := d.service(ctx)
	if err != nil {
		return nil, "", err
	}

	meta, err := svc.Files.Get(fileID).Fields("mimeType").Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, "", err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		slog.Info(err.Error())
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, meta.MimeType, nil
}
