package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/common"
	"github.com/joseph-ayodele/boletas/internal/entity"
)

const (
	tableParseRuns   = "parse_runs"
	defaultListLimit = 50
	maxListLimit     = 500
)

var parseRunColumns = []string{
	"id", "source_name", "source_kind", "content_hash", "forced", "format_id",
	"confidence", "status", "error_message", "fields", "text", "created_at",
}

type ParseRunRepository interface {
	Create(ctx context.Context, run *entity.ParseRun) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ParseRun, error)
	List(ctx context.Context, filter entity.ParseRunFilter) ([]entity.ParseRun, error)
}

type parseRunRepo struct {
	db  *DB
	log *slog.Logger
}

func NewParseRunRepository(db *DB, log *slog.Logger) ParseRunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &parseRunRepo{db: db, log: log}
}

// Create stores run, assigning ID and CreatedAt when they are zero.
func (r *parseRunRepo) Create(ctx context.Context, run *entity.ParseRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	query, args := entsql.Dialect(r.db.Dialect).
		Insert(tableParseRuns).
		Columns(parseRunColumns...).
		Values(
			run.ID.String(), run.SourceName, run.SourceKind, run.ContentHash, run.Forced, run.FormatID,
			run.Confidence, string(run.Status), run.ErrorMessage, string(run.Fields), run.Text, run.CreatedAt,
		).
		Query()
	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.log.Error("parse_run insert failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("%w: insert parse run: %v", common.ErrDatabase, err)
	}
	r.log.Info("parse_run stored", "run_id", run.ID, "format_id", run.FormatID, "status", run.Status)
	return nil
}

func (r *parseRunRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ParseRun, error) {
	selector := entsql.Dialect(r.db.Dialect).
		Select(parseRunColumns...).
		From(entsql.Table(tableParseRuns)).
		Where(entsql.EQ("id", id.String()))
	runs, err := r.query(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, common.NewAppError("NOT_FOUND", "parse run "+id.String(), common.ErrNotFound)
	}
	return &runs[0], nil
}

// List returns runs newest first.
func (r *parseRunRepo) List(ctx context.Context, filter entity.ParseRunFilter) ([]entity.ParseRun, error) {
	var preds []*entsql.Predicate
	if filter.FormatID != "" {
		preds = append(preds, entsql.EQ("format_id", filter.FormatID))
	}
	if filter.Status != "" {
		preds = append(preds, entsql.EQ("status", string(filter.Status)))
	}
	if filter.ContentHash != "" {
		preds = append(preds, entsql.EQ("content_hash", filter.ContentHash))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	selector := entsql.Dialect(r.db.Dialect).
		Select(parseRunColumns...).
		From(entsql.Table(tableParseRuns)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(limit)
	if len(preds) > 0 {
		selector.Where(entsql.And(preds...))
	}
	return r.query(ctx, selector)
}

func (r *parseRunRepo) query(ctx context.Context, selector *entsql.Selector) ([]entity.ParseRun, error) {
	query, args := selector.Query()
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		r.log.Error("parse_run query failed", "err", err)
		return nil, fmt.Errorf("%w: query parse runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var runs []entity.ParseRun
	for rows.Next() {
		run, err := scanParseRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read parse runs: %v", common.ErrDatabase, err)
	}
	return runs, nil
}

func scanParseRun(rows *entsql.Rows) (entity.ParseRun, error) {
	var (
		run                                          entity.ParseRun
		id, status                                   string
		hash, forced, formatID, errMsg, fields, text sql.NullString
	)
	err := rows.Scan(&id, &run.SourceName, &run.SourceKind, &hash, &forced, &formatID,
		&run.Confidence, &status, &errMsg, &fields, &text, &run.CreatedAt)
	if err != nil {
		return run, fmt.Errorf("%w: scan parse run: %v", common.ErrDatabase, err)
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return run, fmt.Errorf("%w: bad parse run id %q: %v", common.ErrDatabase, id, err)
	}
	run.Status = constants.RunStatus(status)
	run.ContentHash, run.Forced, run.FormatID = hash.String, forced.String, formatID.String
	run.ErrorMessage, run.Text = errMsg.String, text.String
	if fields.String != "" {
		run.Fields = []byte(fields.String)
	}
	return run, nil
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
