// Package storage persists accounts, transactions and sessions in SQLite.
// Every transaction query is scoped by the owning account id.
package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"motogiro/internal/models"

	// sqlite driver
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}

	if err := RunMigrations(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateAccount inserts a new account, relying on schema defaults for the
// daily goal and odometer fields. Returns ErrEmailTaken on a duplicate email.
func (db *DB) CreateAccount(ctx context.Context, name, email, passwordHash string) (*models.Account, error) {
	query := sq.Insert("accounts").
		Columns("name", "email", "password_hash").
		Values(name, email, passwordHash)

	result, err := query.RunWith(db.conn).ExecContext(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: accounts.email") {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create account")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "create account")
	}
	return db.GetAccountByID(ctx, id)
}

// GetAccountByID retrieves an account by id.
func (db *DB) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	return db.getAccount(ctx, sq.Eq{"id": id})
}

// GetAccountByEmail retrieves an account by its login email.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return db.getAccount(ctx, sq.Eq{"email": email})
}

func (db *DB) getAccount(ctx context.Context, where sq.Eq) (*models.Account, error) {
	query := sq.Select("id", "name", "email", "password_hash",
		"daily_goal_cents", "odometer_km", "next_service_km", "created_at").
		From("accounts").
		Where(where)

	var a models.Account
	err := query.RunWith(db.conn).QueryRowContext(ctx).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash,
		&a.DailyGoalCents, &a.OdometerKM, &a.NextServiceKM, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get account")
	}
	return &a, nil
}

// AccountCount returns the number of registered accounts.
func (db *DB) AccountCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, errors.Wrap(err, "count accounts")
}

// UpdateDailyGoal overwrites the account's daily earnings goal.
func (db *DB) UpdateDailyGoal(ctx context.Context, accountID, goalCents int64) error {
	query := sq.Update("accounts").
		Set("daily_goal_cents", goalCents).
		Where(sq.Eq{"id": accountID})

	_, err := query.RunWith(db.conn).ExecContext(ctx)
	return errors.Wrap(err, "update daily goal")
}

// UpdateOdometer overwrites the current and/or next-service odometer
// readings. A nil field is left unchanged.
func (db *DB) UpdateOdometer(ctx context.Context, accountID int64, currentKM, nextServiceKM *int64) error {
	if currentKM == nil && nextServiceKM == nil {
		return nil
	}

	query := sq.Update("accounts").Where(sq.Eq{"id": accountID})
	if currentKM != nil {
		query = query.Set("odometer_km", *currentKM)
	}
	if nextServiceKM != nil {
		query = query.Set("next_service_km", *nextServiceKM)
	}

	_, err := query.RunWith(db.conn).ExecContext(ctx)
	return errors.Wrap(err, "update odometer")
}

// AppendTransaction inserts a transaction. When it carries an odometer
// reading, the owning account's current odometer is updated inside the same
// database transaction, so the two writes land or fail together.
// An empty date defaults to today, evaluated at insert time.
func (db *DB) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	if t.Date == "" {
		t.Date = time.Now().Format(models.DateLayout)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "append transaction")
	}
	defer tx.Rollback()

	query := sq.Insert("transactions").
		Columns("account_id", "kind", "amount_cents", "description", "date", "fuel_litres", "odometer_km").
		Values(t.AccountID, t.Kind, t.AmountCents, t.Description, t.Date, t.FuelLitres, t.OdometerKM)

	result, err := query.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "append transaction")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "append transaction")
	}
	t.ID = id

	if t.OdometerKM != nil {
		update := sq.Update("accounts").
			Set("odometer_km", *t.OdometerKM).
			Where(sq.Eq{"id": t.AccountID})
		if _, err := update.RunWith(tx).ExecContext(ctx); err != nil {
			return errors.Wrap(err, "update account odometer")
		}
	}

	return errors.Wrap(tx.Commit(), "append transaction")
}

// DeleteTransaction removes a transaction only when it belongs to the
// requesting account. A mismatched owner is a silent no-op.
func (db *DB) DeleteTransaction(ctx context.Context, id, accountID int64) error {
	query := sq.Delete("transactions").
		Where(sq.Eq{"id": id, "account_id": accountID})

	_, err := query.RunWith(db.conn).ExecContext(ctx)
	return errors.Wrap(err, "delete transaction")
}

// RecentTransactions returns the account's transactions in insertion order
// descending, capped at limit.
func (db *DB) RecentTransactions(ctx context.Context, accountID int64, limit uint64) ([]models.Transaction, error) {
	query := sq.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("id DESC").
		Limit(limit)

	return db.queryTransactions(ctx, query)
}

// AllTransactions returns the account's full history ordered by date
// descending, used for the CSV export.
func (db *DB) AllTransactions(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	query := sq.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("date DESC", "id DESC")

	return db.queryTransactions(ctx, query)
}

var transactionColumns = []string{
	"id", "account_id", "kind", "amount_cents", "description", "date",
	"fuel_litres", "odometer_km", "created_at",
}

func (db *DB) queryTransactions(ctx context.Context, query sq.SelectBuilder) ([]models.Transaction, error) {
	rows, err := query.RunWith(db.conn).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query transactions")
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Kind, &t.AmountCents,
			&t.Description, &t.Date, &t.FuelLitres, &t.OdometerKM, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		txs = append(txs, t)
	}
	return txs, errors.Wrap(rows.Err(), "query transactions")
}

// SumByKindOn sums one kind of transaction for the account on a single day.
// Returns zero when no rows match.
func (db *DB) SumByKindOn(ctx context.Context, accountID int64, kind models.TransactionKind, date string) (int64, error) {
	query := sq.Select("COALESCE(SUM(amount_cents), 0)").
		From("transactions").
		Where(sq.Eq{"account_id": accountID, "kind": kind, "date": date})

	var total int64
	err := query.RunWith(db.conn).QueryRowContext(ctx).Scan(&total)
	return total, errors.Wrap(err, "sum by kind")
}

// SumIncomeBetween sums income between two dates inclusive.
func (db *DB) SumIncomeBetween(ctx context.Context, accountID int64, from, to string) (int64, error) {
	query := sq.Select("COALESCE(SUM(amount_cents), 0)").
		From("transactions").
		Where(sq.Eq{"account_id": accountID, "kind": models.KindIncome}).
		Where(sq.GtOrEq{"date": from}).
		Where(sq.LtOrEq{"date": to})

	var total int64
	err := query.RunWith(db.conn).QueryRowContext(ctx).Scan(&total)
	return total, errors.Wrap(err, "sum income")
}

// DailyKindSum is one (day, kind) aggregate row.
type DailyKindSum struct {
	Date       string
	Kind       models.TransactionKind
	TotalCents int64
}

// DailyKindSums groups the account's transactions between two dates
// inclusive by day and kind. Days without transactions produce no rows.
func (db *DB) DailyKindSums(ctx context.Context, accountID int64, from, to string) ([]DailyKindSum, error) {
	query := sq.Select("date", "kind", "SUM(amount_cents)").
		From("transactions").
		Where(sq.Eq{"account_id": accountID}).
		Where(sq.GtOrEq{"date": from}).
		Where(sq.LtOrEq{"date": to}).
		GroupBy("date", "kind")

	rows, err := query.RunWith(db.conn).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "daily sums")
	}
	defer rows.Close()

	var sums []DailyKindSum
	for rows.Next() {
		var s DailyKindSum
		if err := rows.Scan(&s.Date, &s.Kind, &s.TotalCents); err != nil {
			return nil, errors.Wrap(err, "scan daily sum")
		}
		sums = append(sums, s)
	}
	return sums, errors.Wrap(rows.Err(), "daily sums")
}
