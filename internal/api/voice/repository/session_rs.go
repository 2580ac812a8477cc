package voiceRepository

import (
	"MediVoice/internal/api/voice"
	"MediVoice/internal/entity"
	contextPkg "MediVoice/pkg/context"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *sessionRepository) CreateSession(ctx context.Context, session entity.VoiceSession) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":         session.ID,
		"device_id":  session.DeviceID,
		"user_id":    session.UserID,
		"locale":     session.Locale,
		"route":      session.Route,
		"utterances": session.Utterances,
		"started_at": session.StartedAt,
	}

	query, args, err := sqlx.Named(queryCreateSession, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateSession")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating session")
		return err
	}

	return nil
}

func (r *sessionRepository) EndSession(ctx context.Context, session entity.VoiceSession) error {
	requestID := contextPkg.GetRequestID(ctx)

	endedAt := time.Now()
	if session.EndedAt != nil {
		endedAt = *session.EndedAt
	}

	argsKV := map[string]interface{}{
		"id":         session.ID,
		"locale":     session.Locale,
		"route":      session.Route,
		"utterances": session.Utterances,
		"ended_at":   endedAt,
	}

	query, args, err := sqlx.Named(queryEndSession, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("EndSession named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("EndSession execution err")
		return err
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": session.ID,
		}).Warn("EndSession no rows found")
		return voice.ErrSessionNotFound
	}

	return nil
}
