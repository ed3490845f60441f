package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucasverdier/reelforge/pkg/models"
)

const reelColumns = `id, city, district, price, contact, phone, status, content_type,
	pipeline_stage, pipeline_progress, error_message, video_916_url, video_1x1_url,
	caption_instagram, caption_tiktok, instagram_post_id, tiktok_post_id,
	enable_video_gen, enable_staging, duration_seconds, music_url, created_at, updated_at`

const mediaColumns = `id, reel_id, url, thumbnail_url, media_type, room_type,
	ai_description, sort_order, generated_video_url, staged_url, width, height,
	duration_ms, created_at`

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Reels ---

func (s *PostgresStore) CreateReel(ctx context.Context, reel *models.Reel) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reels (id, city, district, price, contact, phone, status, content_type,
		   enable_video_gen, enable_staging, duration_seconds, music_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		reel.ID, reel.City, reel.District, reel.Price, reel.Contact, reel.Phone,
		reel.Status, reel.ContentType, reel.EnableVideoGen, reel.EnableStaging,
		reel.DurationSeconds, reel.MusicURL, reel.CreatedAt, reel.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create reel: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReel(ctx context.Context, id uuid.UUID) (*models.Reel, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+reelColumns+` FROM reels WHERE id = $1`, id)
	reel, err := scanReel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reel: %w", err)
	}
	return reel, nil
}

func (s *PostgresStore) GetReelWithMedia(ctx context.Context, id uuid.UUID) (*models.Reel, error) {
	reel, err := s.GetReel(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.ListMediaItems(ctx, id)
	if err != nil {
		return nil, err
	}
	reel.MediaItems = items
	return reel, nil
}

func (s *PostgresStore) UpdateReel(ctx context.Context, id uuid.UUID, opts ...ReelUpdateOption) error {
	params := &ReelUpdate{}
	for _, opt := range opts {
		opt(params)
	}

	query := `UPDATE reels SET updated_at = $2`
	args := []any{id, time.Now().UTC()}
	argIdx := 3

	set := func(column string, value any) {
		query += fmt.Sprintf(", %s = $%d", column, argIdx)
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		set("status", *params.Status)
	}
	if params.Stage != nil {
		set("pipeline_stage", *params.Stage)
	}
	if params.Progress != nil {
		set("pipeline_progress", *params.Progress)
	}
	if params.ErrorMessage != nil {
		set("error_message", *params.ErrorMessage)
	}
	if params.Video916URL != nil {
		set("video_916_url", *params.Video916URL)
	}
	if params.Video1x1URL != nil {
		set("video_1x1_url", *params.Video1x1URL)
	}
	if params.CaptionIG != nil {
		set("caption_instagram", *params.CaptionIG)
	}
	if params.CaptionTT != nil {
		set("caption_tiktok", *params.CaptionTT)
	}
	if params.IGPostID != nil {
		set("instagram_post_id", *params.IGPostID)
	}
	if params.TTPostID != nil {
		set("tiktok_post_id", *params.TTPostID)
	}

	query += " WHERE id = $1"

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update reel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Media Items ---

func (s *PostgresStore) CreateMediaItem(ctx context.Context, item *models.MediaItem) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO media_items (id, reel_id, url, thumbnail_url, media_type, room_type,
		   ai_description, sort_order, generated_video_url, staged_url, width, height,
		   duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		item.ID, item.ReelID, item.URL, item.ThumbnailURL, item.MediaType, item.RoomType,
		item.AIDescription, item.SortOrder, item.GeneratedVideoURL, item.StagedURL,
		item.Width, item.Height, item.DurationMs, item.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create media item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMediaItems(ctx context.Context, reelID uuid.UUID) ([]*models.MediaItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE reel_id = $1 ORDER BY sort_order, created_at`,
		reelID)
	if err != nil {
		return nil, fmt.Errorf("list media items: %w", err)
	}
	defer rows.Close()

	var items []*models.MediaItem
	for rows.Next() {
		var m models.MediaItem
		if err := rows.Scan(&m.ID, &m.ReelID, &m.URL, &m.ThumbnailURL, &m.MediaType,
			&m.RoomType, &m.AIDescription, &m.SortOrder, &m.GeneratedVideoURL,
			&m.StagedURL, &m.Width, &m.Height, &m.DurationMs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media item: %w", err)
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (s *PostgresStore) UpdateMediaItem(ctx context.Context, id uuid.UUID, opts ...MediaUpdateOption) error {
	params := &MediaUpdate{}
	for _, opt := range opts {
		opt(params)
	}

	var sets []string
	args := []any{id}
	argIdx := 2

	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.RoomType != nil {
		set("room_type", *params.RoomType)
	}
	if params.AIDescription != nil {
		set("ai_description", *params.AIDescription)
	}
	if params.SortOrder != nil {
		set("sort_order", *params.SortOrder)
	}
	if params.GeneratedVideoURL != nil {
		set("generated_video_url", *params.GeneratedVideoURL)
	}
	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE media_items SET " + strings.Join(sets, ", ") + " WHERE id = $1"

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update media item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Social Accounts ---

func (s *PostgresStore) CreateSocialAccount(ctx context.Context, account *models.SocialAccount) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO social_accounts (id, platform, access_token, refresh_token, account_id,
		   account_name, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.Platform, account.AccessToken, account.RefreshToken,
		account.AccountID, account.AccountName, account.ExpiresAt,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create social account: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSocialAccount(ctx context.Context, platform string) (*models.SocialAccount, error) {
	var a models.SocialAccount
	err := s.pool.QueryRow(ctx,
		`SELECT id, platform, access_token, refresh_token, account_id, account_name,
		   expires_at, created_at, updated_at
		 FROM social_accounts WHERE platform = $1 LIMIT 1`, platform,
	).Scan(&a.ID, &a.Platform, &a.AccessToken, &a.RefreshToken, &a.AccountID,
		&a.AccountName, &a.ExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get social account: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) UpdateSocialAccountTokens(ctx context.Context, id uuid.UUID, accessToken string, refreshToken *string, expiresAt time.Time) error {
	query := `UPDATE social_accounts SET access_token = $2, expires_at = $3, updated_at = NOW()`
	args := []any{id, accessToken, expiresAt}
	if refreshToken != nil {
		query += ", refresh_token = $4"
		args = append(args, *refreshToken)
	}
	query += " WHERE id = $1"

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update social account tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSocialAccount(ctx context.Context, platform string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM social_accounts WHERE platform = $1`, platform)
	if err != nil {
		return fmt.Errorf("delete social account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- helpers ---

func scanReel(row pgx.Row) (*models.Reel, error) {
	var r models.Reel
	err := row.Scan(&r.ID, &r.City, &r.District, &r.Price, &r.Contact, &r.Phone,
		&r.Status, &r.ContentType, &r.PipelineStage, &r.PipelineProgress,
		&r.ErrorMessage, &r.Video916URL, &r.Video1x1URL, &r.CaptionInstagram,
		&r.CaptionTikTok, &r.InstagramPostID, &r.TikTokPostID, &r.EnableVideoGen,
		&r.EnableStaging, &r.DurationSeconds, &r.MusicURL, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
