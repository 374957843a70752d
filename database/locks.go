package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockScope - пространство имен advisory-блокировок
type LockScope string

const (
	LockScopeUserLedger LockScope = "user_ledger"
	LockScopeClientNo   LockScope = "client_no"
)

// LockKey - ключ блокировки вида "scope:id"
func LockKey(scope LockScope, id string) string {
	return fmt.Sprintf("%s:%s", scope, id)
}

// IsPostgres - транзакция идет через драйвер postgres
func IsPostgres(tx *gorm.DB) bool {
	return tx.Dialector.Name() == DriverPostgres
}

// SupportsRowLocks - диалект понимает SELECT ... FOR UPDATE
func SupportsRowLocks(tx *gorm.DB) bool {
	name := tx.Dialector.Name()
	return name == DriverPostgres || name == DriverMySQL
}

// ForUpdate добавляет FOR UPDATE, если диалект его поддерживает.
// SQLite сериализует писателей сам.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if SupportsRowLocks(tx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// AdvisoryLock берет транзакционную advisory-блокировку Postgres.
// Снимается автоматически при commit/rollback. Вызывать только внутри транзакции.
// На других диалектах ничего не делает: там сериализация держится на блокировках строк.
func AdvisoryLock(tx *gorm.DB, scope LockScope, id string, timeout time.Duration) error {
	if !IsPostgres(tx) {
		return nil
	}

	if timeout > 0 {
		if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())).Error; err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	key := LockKey(scope, id)
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
		if IsLockTimeout(err) {
			return fmt.Errorf("failed to acquire lock %s within %v: %w", key, timeout, err)
		}
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return nil
}

// IsLockTimeout - код PostgreSQL 55P03 (lock_not_available)
func IsLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03"
	}
	return false
}
