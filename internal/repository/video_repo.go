package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-vidtube/internal/model"
)

const videoColumns = `id, owner_id, title, description, video_file, thumbnail, duration, views,
	is_published, created_at, updated_at`

var videoSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"duration":  "duration",
	"views":     "views",
}

// IsSortableVideoField reports whether name can be used as a listing sort key.
func IsSortableVideoField(name string) bool {
	_, ok := videoSortColumns[name]
	return ok
}

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func scanVideo(row pgx.Row) (model.Video, error) {
	var v model.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoFile, &v.Thumbnail,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *VideoRepository) Create(ctx context.Context, v model.Video) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO videos (id, owner_id, title, description, video_file, thumbnail, duration, views, is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.OwnerID, v.Title, v.Description, v.VideoFile, v.Thumbnail, v.Duration, v.Views,
		v.IsPublished, v.CreatedAt, v.UpdatedAt)
	if pgErrorCode(err) == foreignKeyViolation {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Video{}, model.ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, fmt.Errorf("find video by id: %w", err)
	}
	return v, nil
}

// List returns one page of the filtered, sorted set plus the size of the
// whole filtered set.
func (r *VideoRepository) List(ctx context.Context, filter model.VideoFilter) ([]model.Video, int64, error) {
	where, args := buildVideoWhere(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	query, pageArgs := buildVideoListQuery(filter)
	rows, err := r.pool.Query(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := make([]model.Video, 0, filter.Limit)
	for rows.Next() {
		v, scanErr := scanVideo(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("scan video: %w", scanErr)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, total, nil
}

func (r *VideoRepository) Update(ctx context.Context, id string, title *string, description *string, thumbnail string) (model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx,
		`UPDATE videos
		 SET title = COALESCE($2, title),
		     description = COALESCE($3, description),
		     thumbnail = COALESCE(NULLIF($4, ''), thumbnail),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+videoColumns,
		id, title, description, thumbnail))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Video{}, model.ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, fmt.Errorf("update video: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) SetPublished(ctx context.Context, id string, published bool) (model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx,
		`UPDATE videos SET is_published = $2, updated_at = now() WHERE id = $1 RETURNING `+videoColumns,
		id, published))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Video{}, model.ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, fmt.Errorf("set video published: %w", err)
	}
	return v, nil
}

// Delete removes the video and reports how many rows went away; zero is not an error.
func (r *VideoRepository) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete video: %w", err)
	}
	return tag.RowsAffected(), nil
}

func buildVideoWhere(filter model.VideoFilter) (string, []any) {
	var clauses []string
	var args []any

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		clauses = append(clauses, `title ILIKE $`+strconv.Itoa(len(args))+` ESCAPE '\'`)
	}

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		clauses = append(clauses, `owner_id = $`+strconv.Itoa(len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildVideoListQuery(filter model.VideoFilter) (string, []any) {
	where, args := buildVideoWhere(filter)

	order := " ORDER BY created_at ASC, id ASC"
	if column, ok := videoSortColumns[filter.SortBy]; ok {
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		order = " ORDER BY " + column + " " + direction + ", id ASC"
	}

	args = append(args, filter.Limit, filter.Skip())
	limit := " LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	return `SELECT ` + videoColumns + ` FROM videos` + where + order + limit, args
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
