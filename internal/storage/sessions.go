package storage

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"motogiro/internal/models"
)

// SessionInfo holds session validation data.
type SessionInfo struct {
	Account      *models.Account
	LastActivity time.Time
	ExpiresAt    time.Time
}

// CreateSession creates a new session for an account.
func (db *DB) CreateSession(ctx context.Context, token string, accountID int64, expiresAt time.Time) error {
	query := sq.Insert("sessions").
		Columns("token", "account_id", "expires_at", "last_activity").
		Values(token, accountID, expiresAt, time.Now())

	_, err := query.RunWith(db.conn).ExecContext(ctx)
	return errors.Wrap(err, "create session")
}

// ValidateSession checks a session token and returns the associated account.
func (db *DB) ValidateSession(ctx context.Context, token string) (*models.Account, error) {
	info, err := db.ValidateSessionWithInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return info.Account, nil
}

// ValidateSessionWithInfo checks a session token and returns session
// details. Expired or unknown tokens yield ErrNotFound.
func (db *DB) ValidateSessionWithInfo(ctx context.Context, token string) (*SessionInfo, error) {
	query := sq.Select("a.id", "a.name", "a.email", "a.password_hash",
		"a.daily_goal_cents", "a.odometer_km", "a.next_service_km", "a.created_at",
		"s.last_activity", "s.expires_at").
		From("sessions s").
		Join("accounts a ON s.account_id = a.id").
		Where(sq.Eq{"s.token": token})

	var a models.Account
	var lastActivity, expiresAt time.Time
	err := query.RunWith(db.conn).QueryRowContext(ctx).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash,
		&a.DailyGoalCents, &a.OdometerKM, &a.NextServiceKM, &a.CreatedAt,
		&lastActivity, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "validate session")
	}

	if !expiresAt.After(time.Now()) {
		return nil, ErrNotFound
	}
	return &SessionInfo{
		Account:      &a,
		LastActivity: lastActivity,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (db *DB) RenewSession(ctx context.Context, token string, newExpiresAt time.Time) error {
	query := sq.Update("sessions").
		Set("last_activity", time.Now()).
		Set("expires_at", newExpiresAt).
		Where(sq.Eq{"token": token})

	_, err := query.RunWith(db.conn).ExecContext(ctx)
	return errors.Wrap(err, "renew session")
}

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	query := sq.Delete("sessions").Where(sq.Eq{"token": token})

	_, err := query.RunWith(db.conn).ExecContext(ctx)
	return errors.Wrap(err, "delete session")
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions(ctx context.Context) error {
	query := sq.Delete("sessions").Where(sq.Lt{"expires_at": time.Now()})

	_, err := query.RunWith(db.conn).ExecContext(ctx)
	return errors.Wrap(err, "clean expired sessions")
}
