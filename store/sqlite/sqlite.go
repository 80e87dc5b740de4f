/*
Package sqlite provides the SQLite-backed store.

PURPOSE:
  Implements store.Store over a single SQLite file. In production the same
  patterns apply to PostgreSQL; only minor SQL dialect differences.

KEY TABLES:
  pay_settings: one row per user, derived desired amount cached alongside
                its inputs
  bills:        user-owned bill records; created_at doubles as the
                recurrence anchor and is never rewritten on update

STORAGE FORMATS:
  Decimals as TEXT (exact round-trip, no float drift), dates as 2006-01-02,
  timestamps as RFC3339. Nullable columns back the optional settings fields;
  absent stays absent across a round-trip.

CONCURRENCY:
  sync.RWMutex for thread-safety. SQLite is opened in WAL mode so readers
  don't block each other.

USAGE:
  st, err := sqlite.New("./data/budgeto.db")   // or ":memory:" for tests
  defer st.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/icaruswings/Budgeto/paycycle"
	"github.com/icaruswings/Budgeto/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	// now is injectable so tests can pin CreatedAt.
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pay_settings (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		actual_pay_amount TEXT NOT NULL DEFAULT '0',
		actual_pay_frequency TEXT NOT NULL DEFAULT '',
		actual_pay_day_of_month INTEGER NOT NULL DEFAULT 0,
		desired_pay_frequency TEXT NOT NULL DEFAULT '',
		desired_pay_day_of_week INTEGER,
		desired_pay_amount TEXT,
		next_actual_payday TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		frequency TEXT NOT NULL,
		due_date TEXT,
		due_day_of_month INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bills_user ON bills(user_id);
	CREATE INDEX IF NOT EXISTS idx_bills_user_active ON bills(user_id, active);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAY SETTINGS
// =============================================================================

func (s *Store) GetPaySettings(ctx context.Context, userID string) (*paycycle.PaySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, email, actual_pay_amount, actual_pay_frequency,
		       actual_pay_day_of_month, desired_pay_frequency,
		       desired_pay_day_of_week, desired_pay_amount, next_actual_payday
		FROM pay_settings WHERE user_id = ?`, userID)

	var (
		settings       paycycle.PaySettings
		actualAmount   string
		actualFreq     string
		desiredFreq    string
		desiredWeekday sql.NullInt64
		desiredAmount  sql.NullString
		nextPayday     sql.NullString
	)
	err := row.Scan(&settings.UserID, &settings.Email, &actualAmount, &actualFreq,
		&settings.ActualPayDayOfMonth, &desiredFreq, &desiredWeekday, &desiredAmount, &nextPayday)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pay settings: %w", err)
	}

	settings.ActualPayAmount, err = decimal.NewFromString(actualAmount)
	if err != nil {
		return nil, fmt.Errorf("corrupt actual pay amount for %s: %w", userID, err)
	}
	settings.ActualPayFrequency = paycycle.PayFrequency(actualFreq)
	settings.DesiredPayFrequency = paycycle.PayFrequency(desiredFreq)

	if desiredWeekday.Valid {
		wd := time.Weekday(desiredWeekday.Int64)
		settings.DesiredPayDayOfWeek = &wd
	}
	if desiredAmount.Valid {
		amount, err := decimal.NewFromString(desiredAmount.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt desired pay amount for %s: %w", userID, err)
		}
		settings.DesiredPayAmount = &amount
	}
	if nextPayday.Valid && nextPayday.String != "" {
		tp, err := paycycle.ParseTimePoint(nextPayday.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt next payday for %s: %w", userID, err)
		}
		settings.NextActualPayday = &tp
	}
	return &settings, nil
}

func (s *Store) SavePaySettings(ctx context.Context, settings paycycle.PaySettings) error {
	if settings.UserID == "" {
		return store.ErrMissingUserID
	}

	// The cached desired amount always tracks its inputs.
	settings.RecalculateDesiredAmount()

	s.mu.Lock()
	defer s.mu.Unlock()

	var desiredWeekday interface{}
	if settings.DesiredPayDayOfWeek != nil {
		desiredWeekday = int64(*settings.DesiredPayDayOfWeek)
	}
	var desiredAmount interface{}
	if settings.DesiredPayAmount != nil {
		desiredAmount = settings.DesiredPayAmount.String()
	}
	var nextPayday interface{}
	if settings.NextActualPayday != nil && !settings.NextActualPayday.IsZero() {
		nextPayday = settings.NextActualPayday.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_settings (
			user_id, email, actual_pay_amount, actual_pay_frequency,
			actual_pay_day_of_month, desired_pay_frequency,
			desired_pay_day_of_week, desired_pay_amount, next_actual_payday,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			actual_pay_amount = excluded.actual_pay_amount,
			actual_pay_frequency = excluded.actual_pay_frequency,
			actual_pay_day_of_month = excluded.actual_pay_day_of_month,
			desired_pay_frequency = excluded.desired_pay_frequency,
			desired_pay_day_of_week = excluded.desired_pay_day_of_week,
			desired_pay_amount = excluded.desired_pay_amount,
			next_actual_payday = excluded.next_actual_payday,
			updated_at = excluded.updated_at`,
		settings.UserID, settings.Email, settings.ActualPayAmount.String(),
		string(settings.ActualPayFrequency), settings.ActualPayDayOfMonth,
		string(settings.DesiredPayFrequency), desiredWeekday, desiredAmount,
		nextPayday, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save pay settings: %w", err)
	}
	return nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM pay_settings ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =============================================================================
// BILLS
// =============================================================================

func (s *Store) ListBills(ctx context.Context, userID string) ([]paycycle.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, amount, frequency, due_date,
		       due_day_of_month, active, created_at
		FROM bills WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []paycycle.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

func (s *Store) GetBill(ctx context.Context, userID, billID string) (*paycycle.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, amount, frequency, due_date,
		       due_day_of_month, active, created_at
		FROM bills WHERE user_id = ? AND id = ?`, userID, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bill: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, store.ErrNotFound
	}
	bill, err := scanBill(rows)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *Store) CreateBill(ctx context.Context, bill paycycle.Bill) (paycycle.Bill, error) {
	if bill.UserID == "" {
		return paycycle.Bill{}, store.ErrMissingUserID
	}
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = paycycle.TimePointOf(s.now(), time.UTC)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (id, user_id, name, amount, frequency, due_date,
		                   due_day_of_month, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.UserID, bill.Name, bill.Amount.String(),
		string(bill.Frequency), dueDateValue(bill), bill.DueDayOfMonth,
		boolToInt(bill.Active), bill.CreatedAt.String())
	if err != nil {
		return paycycle.Bill{}, fmt.Errorf("failed to create bill: %w", err)
	}
	return bill, nil
}

func (s *Store) UpdateBill(ctx context.Context, bill paycycle.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// created_at deliberately untouched: it anchors recurrence.
	res, err := s.db.ExecContext(ctx, `
		UPDATE bills SET name = ?, amount = ?, frequency = ?, due_date = ?,
		                 due_day_of_month = ?, active = ?
		WHERE user_id = ? AND id = ?`,
		bill.Name, bill.Amount.String(), string(bill.Frequency),
		dueDateValue(bill), bill.DueDayOfMonth, boolToInt(bill.Active),
		bill.UserID, bill.ID)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBill(ctx context.Context, userID, billID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE user_id = ? AND id = ?`, userID, billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// =============================================================================
// ROW MAPPING
// =============================================================================

func scanBill(rows *sql.Rows) (paycycle.Bill, error) {
	var (
		bill      paycycle.Bill
		amount    string
		frequency string
		dueDate   sql.NullString
		active    int
		createdAt string
	)
	err := rows.Scan(&bill.ID, &bill.UserID, &bill.Name, &amount, &frequency,
		&dueDate, &bill.DueDayOfMonth, &active, &createdAt)
	if err != nil {
		return paycycle.Bill{}, fmt.Errorf("failed to scan bill: %w", err)
	}

	bill.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return paycycle.Bill{}, fmt.Errorf("corrupt amount on bill %s: %w", bill.ID, err)
	}
	bill.Frequency = paycycle.BillFrequency(frequency)
	bill.Active = active != 0

	if dueDate.Valid && dueDate.String != "" {
		tp, err := paycycle.ParseTimePoint(dueDate.String)
		if err != nil {
			return paycycle.Bill{}, fmt.Errorf("corrupt due date on bill %s: %w", bill.ID, err)
		}
		bill.DueDate = &tp
	}
	bill.CreatedAt, err = paycycle.ParseTimePoint(createdAt)
	if err != nil {
		return paycycle.Bill{}, fmt.Errorf("corrupt created_at on bill %s: %w", bill.ID, err)
	}
	return bill, nil
}

func dueDateValue(bill paycycle.Bill) interface{} {
	if bill.DueDate == nil || bill.DueDate.IsZero() {
		return nil
	}
	return bill.DueDate.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
