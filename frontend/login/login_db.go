package login

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"pricecheck/infrastructure/argon"
	"pricecheck/infrastructure/audit"
	"pricecheck/infrastructure/session"
	"pricecheck/infrastructure/sqlite"
	"pricecheck/models"
)

// ErrPasswordNotConfigured is returned when no shared password hash has been
// stored yet (fresh install before cmd/setpassword ran).
var ErrPasswordNotConfigured = errors.New("shared password is not configured")

func loadSharedPasswordHash(ctx context.Context, db *sqlite.DB) (string, error) {
	var setting models.Setting
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&setting).
			Where("key = ?", models.SettingSharedPasswordHash).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrPasswordNotConfigured
		}
		return "", err
	}
	return setting.Value, nil
}

// VerifySharedPassword checks the submitted password against the stored
// argon2id hash.
func VerifySharedPassword(ctx context.Context, db *sqlite.DB, password string) (bool, error) {
	hash, err := loadSharedPasswordHash(ctx, db)
	if err != nil {
		return false, err
	}
	return argon.ComparePasswordAndHash(password, hash)
}

// NewSession builds an unsaved session with a fresh token and the standard
// 30-minute window.
func NewSession() models.Session {
	return models.Session{
		ID:        newSessionToken(),
		ExpiresAt: session.DefaultExpiry(),
	}
}

func persistSession(ctx context.Context, db *sqlite.DB, s models.Session) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&models.Session{
			ID:        s.ID,
			ExpiresAt: s.ExpiresAt,
		}).Exec(ctx)
		return err
	})
}

func DeleteSessionByToken(ctx context.Context, db *sqlite.DB, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("id = ?", token).Exec(ctx)
		return err
	})
}

// LoadSessionByToken loads a live session. Expired rows are deleted on the
// way out and reported as sql.ErrNoRows so callers treat them as absent.
func LoadSessionByToken(ctx context.Context, db *sqlite.DB, token string) (models.Session, error) {
	var s models.Session
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&s).
			Where("s.id = ?", token).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		return models.Session{}, err
	}
	if s.Expired() {
		_ = DeleteSessionByToken(ctx, db, token)
		return models.Session{}, sql.ErrNoRows
	}
	return s, nil
}

// UpsertSharedPasswordHash stores the argon2id hash of the shared daily
// password, replacing any prior value.
func UpsertSharedPasswordHash(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor, rawPassword string) error {
	rawPassword = strings.TrimSpace(rawPassword)
	if rawPassword == "" {
		return errors.New("password is required")
	}
	hash, err := argon.CreateHash(rawPassword, argon.DefaultParams)
	if err != nil {
		return err
	}

	now := time.Now()
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at`, models.SettingSharedPasswordHash, hash, now); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, actor, "password.update", "settings", models.SettingSharedPasswordHash, nil, nil)
		}
		return nil
	})
}
