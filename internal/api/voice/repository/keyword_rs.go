package voiceRepository

import (
	"MediVoice/internal/api/voice"
	"MediVoice/internal/entity"
	contextPkg "MediVoice/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type CommandKeywordDB struct {
	ID        string         `db:"id"`
	Action    string         `db:"action"`
	Route     sql.NullString `db:"route"`
	Locale    string         `db:"locale"`
	Keyword   string         `db:"keyword"`
	Position  sql.NullInt64  `db:"position"`
	IsActive  sql.NullBool   `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *keywordRepository) ListActiveKeywords(ctx context.Context) ([]entity.CommandKeyword, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []CommandKeywordDB

	query, args, err := sqlx.Named(queryListActiveKeywords, map[string]interface{}{})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListActiveKeywords named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListActiveKeywords execution err")
		return nil, err
	}

	keywords := make([]entity.CommandKeyword, 0, len(rows))
	for _, row := range rows {
		keywords = append(keywords, r.makeKeyword(row))
	}

	return keywords, nil
}

func (r *keywordRepository) CreateKeyword(ctx context.Context, keyword entity.CommandKeyword) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":         keyword.ID,
		"action":     keyword.Action,
		"route":      keyword.Route,
		"locale":     keyword.Locale,
		"keyword":    keyword.Keyword,
		"position":   keyword.Position,
		"is_active":  keyword.IsActive,
		"created_at": keyword.CreatedAt,
		"updated_at": keyword.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateKeyword, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateKeyword")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"constraint": pqErr.Constraint,
			}).Warn("Command keyword already exists")
			return voice.ErrKeywordExists
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating command keyword")
		return err
	}

	return nil
}

func (r *keywordRepository) DeactivateKeyword(ctx context.Context, id string, at time.Time) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":         id,
		"updated_at": at,
	}

	query, args, err := sqlx.Named(queryDeactivateKeyword, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeactivateKeyword named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeactivateKeyword execution err")
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"keyword_id": id,
		}).Warn("DeactivateKeyword no rows found")
		return voice.ErrKeywordNotFound
	}

	return nil
}

func (r *keywordRepository) makeKeyword(row CommandKeywordDB) entity.CommandKeyword {
	return entity.CommandKeyword{
		ID:        row.ID,
		Action:    row.Action,
		Route:     row.Route.String,
		Locale:    row.Locale,
		Keyword:   row.Keyword,
		Position:  int(row.Position.Int64),
		IsActive:  row.IsActive.Bool,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
