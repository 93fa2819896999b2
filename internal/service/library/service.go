package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/icut-app/icut/internal/lib/logger/sl"
	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/service"
	"github.com/icut-app/icut/internal/storage"
)

type Library struct {
	log          *slog.Logger
	assetStorage AssetStorage
}

type AssetStorage interface {
	SaveAsset(ctx context.Context, in models.AssetIn) (models.Asset, error)
	Asset(ctx context.Context, id int64) (models.Asset, error)
	AssetsByProject(ctx context.Context, projectID int64) ([]models.Asset, error)
	DeleteAsset(ctx context.Context, id int64) error
}

func New(
	log *slog.Logger,
	assetStorage AssetStorage,
) *Library {
	return &Library{
		log:          log,
		assetStorage: assetStorage,
	}
}

// AddAsset registers an imported media file under its project.
//
// When the caller gives no asset type, it is sniffed from the
// file's content. Path-level dedup is the caller's concern.
func (l *Library) AddAsset(ctx context.Context, in models.AssetIn) (models.Asset, error) {
	const op = "Library.AddAsset"

	log := l.log.With(
		slog.String("op", op),
	)

	log.Info("registering asset", slog.Int64("projectID", in.ProjectID), slog.String("path", in.FilePath))

	if in.AssetType == "" {
		assetType, err := sniffAssetType(in.FilePath)
		if err != nil {
			log.Warn("failed to sniff asset type", sl.Err(err))
			return models.Asset{}, fmt.Errorf("%s: %w", op, service.ErrFileNotExists)
		}
		in.AssetType = assetType
	}

	asset, err := l.assetStorage.SaveAsset(ctx, in)
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			log.Warn("project not found", slog.Int64("projectID", in.ProjectID))
			return models.Asset{}, fmt.Errorf("%s: %w", op, service.ErrProjectNotFound)
		}
		log.Error("failed to save asset", sl.Err(err))
		return models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info(
		"registered asset",
		slog.Int64("id", asset.ID),
		slog.String("type", asset.AssetType),
	)

	return asset, nil
}

// Asset returns asset by given id.
func (l *Library) Asset(ctx context.Context, id int64) (models.Asset, error) {
	const op = "Library.Asset"

	log := l.log.With(
		slog.String("op", op),
	)

	asset, err := l.assetStorage.Asset(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			log.Warn("asset not found", slog.Int64("id", id))
			return models.Asset{}, fmt.Errorf("%s: %w", op, service.ErrAssetNotFound)
		}
		log.Error("failed to get asset", slog.Int64("id", id), sl.Err(err))
		return models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	return asset, nil
}

// AssetsByProject returns all assets of a project.
// Unknown project gives an empty slice.
func (l *Library) AssetsByProject(ctx context.Context, projectID int64) ([]models.Asset, error) {
	const op = "Library.AssetsByProject"

	log := l.log.With(
		slog.String("op", op),
	)

	assets, err := l.assetStorage.AssetsByProject(ctx, projectID)
	if err != nil {
		log.Error("failed to list assets", slog.Int64("projectID", projectID), sl.Err(err))
		return []models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	return assets, nil
}

// SearchAssets returns the project's assets ranked by
// fuzzy distance of the file name to the query.
func (l *Library) SearchAssets(ctx context.Context, projectID int64, filter models.AssetFilter) ([]models.Asset, error) {
	const op = "Library.SearchAssets"

	log := l.log.With(
		slog.String("op", op),
	)

	assets, err := l.assetStorage.AssetsByProject(ctx, projectID)
	if err != nil {
		log.Error("failed to list assets", slog.Int64("projectID", projectID), sl.Err(err))
		return []models.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	ranked := filterRank(assets, filter)

	if filter.MaxRespLen > 0 && len(ranked) > filter.MaxRespLen {
		ranked = ranked[:filter.MaxRespLen]
	}

	res := make([]models.Asset, 0, len(ranked))
	for _, r := range ranked {
		res = append(res, r.asset)
	}

	return res, nil
}

// DeleteAsset deletes asset. Clips referencing it
// keep their placement and become gaps.
func (l *Library) DeleteAsset(ctx context.Context, id int64) error {
	const op = "Library.DeleteAsset"

	log := l.log.With(
		slog.String("op", op),
	)

	log.Info("deleting asset", slog.Int64("id", id))

	if err := l.assetStorage.DeleteAsset(ctx, id); err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			log.Warn("asset not found", slog.Int64("id", id))
			return fmt.Errorf("%s: %w", op, service.ErrAssetNotFound)
		}
		log.Error("failed to delete asset", slog.Int64("id", id), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// sniffAssetType classifies a file on disk by content.
func sniffAssetType(path string) (string, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}

	switch {
	case strings.HasPrefix(mime.String(), "video/"):
		return models.AssetTypeVideo, nil
	case strings.HasPrefix(mime.String(), "audio/"):
		return models.AssetTypeAudio, nil
	case strings.HasPrefix(mime.String(), "image/"):
		return models.AssetTypeImage, nil
	default:
		return mime.String(), nil
	}
}
