package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is the query surface shared by *sqlx.DB and *sqlx.Tx. Repositories
// are built against it so the same queries run standalone or inside a
// transaction.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

type Repositories struct {
	User         UserRepository
	Application  ApplicationRepository
	Document     DocumentRepository
	Payment      PaymentRepository
	Biometric    BiometricRepository
	Notification NotificationRepository
	AuditLog     AuditLogRepository
	Session      SessionRepository
}

func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Application:  NewApplicationRepository(db),
		Document:     NewDocumentRepository(db),
		Payment:      NewPaymentRepository(db),
		Biometric:    NewBiometricRepository(db),
		Notification: NewNotificationRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Session:      NewSessionRepository(db),
	}
}

// Store owns the database handle and hands out transaction-scoped
// repository sets. Workflow transitions run their status write, stamps,
// notifications and audit rows through InTx so they commit or roll back as
// one unit.
type Store struct {
	db *sqlx.DB
	*Repositories
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, Repositories: NewRepositories(db)}
}

func (s *Store) InTx(ctx context.Context, fn func(r *Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(NewRepositories(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
