package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sovereignhq/sovereign/internal/task"
)

// DefaultWalletBalance seeds new accounts, in whole Naira.
const DefaultWalletBalance = 254000

// Settings keys.
const (
	KeyWalletBalance = "wallet_balance"
	KeyProfile       = "profile"
)

// ───────────────────────────────────────────────────────────────────────────────
// TASK OPERATIONS
// ───────────────────────────────────────────────────────────────────────────────

// SaveTask inserts a new task record.
func (s *Store) SaveTask(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	planJSON, resultJSON, err := marshalTaskBlobs(t)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, raw_input, status, plan, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.RawInput, string(t.Status), planJSON, resultJSON, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateTask rewrites the mutable fields of an existing task.
func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	planJSON, resultJSON, err := marshalTaskBlobs(t)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, plan = ?, result = ? WHERE id = ?`,
		string(t.Status), planJSON, resultJSON, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task not found: %s", t.ID)
	}
	return nil
}

// DeleteTask removes a task record. Deleting a missing id is a no-op.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ListTasks returns all tasks owned by userID, newest first.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, raw_input, status, plan, result, created_at
		FROM tasks WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTask retrieves one task by id.
func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, raw_input, status, plan, result, created_at
		FROM tasks WHERE id = ?`,
		id,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %s", id)
	}
	return t, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var status string
	var planJSON, resultJSON sql.NullString

	err := row.Scan(&t.ID, &t.UserID, &t.RawInput, &status, &planJSON, &resultJSON, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Status = task.Status(status)

	if planJSON.Valid {
		if err := json.Unmarshal([]byte(planJSON.String), &t.Plan); err != nil {
			return nil, fmt.Errorf("unmarshal plan: %w", err)
		}
	}
	if resultJSON.Valid {
		if err := json.Unmarshal([]byte(resultJSON.String), &t.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return &t, nil
}

// marshalTaskBlobs serializes the optional plan/result as JSON, NULL when
// absent.
func marshalTaskBlobs(t *task.Task) (plan, result any, err error) {
	if t.Plan != nil {
		raw, err := json.Marshal(t.Plan)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal plan: %w", err)
		}
		plan = string(raw)
	}
	if t.Result != nil {
		raw, err := json.Marshal(t.Result)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal result: %w", err)
		}
		result = string(raw)
	}
	return plan, result, nil
}

// ───────────────────────────────────────────────────────────────────────────────
// SETTINGS OPERATIONS
// ───────────────────────────────────────────────────────────────────────────────

// setSetting upserts one (user, key) value.
func (s *Store) setSetting(ctx context.Context, userID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// getSetting reads one (user, key) value; ok is false when unset.
func (s *Store) getSetting(ctx context.Context, userID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE user_id = ? AND key = ?`, userID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// WalletBalance returns the user's balance, seeding the default for accounts
// that have never stored one.
func (s *Store) WalletBalance(ctx context.Context, userID string) (int, error) {
	value, ok, err := s.getSetting(ctx, userID, KeyWalletBalance)
	if err != nil {
		return 0, err
	}
	if !ok {
		return s.seedBalance, nil
	}
	balance, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("corrupt wallet balance %q: %w", value, err)
	}
	return balance, nil
}

// SetWalletBalance persists the user's balance.
func (s *Store) SetWalletBalance(ctx context.Context, userID string, balance int) error {
	return s.setSetting(ctx, userID, KeyWalletBalance, strconv.Itoa(balance))
}

// Profile returns the user's saved profile; a zero profile when unset.
func (s *Store) Profile(ctx context.Context, userID string) (task.UserProfile, error) {
	var profile task.UserProfile
	value, ok, err := s.getSetting(ctx, userID, KeyProfile)
	if err != nil || !ok {
		return profile, err
	}
	if err := json.Unmarshal([]byte(value), &profile); err != nil {
		return profile, fmt.Errorf("unmarshal profile: %w", err)
	}
	return profile, nil
}

// SetProfile persists the user's profile.
func (s *Store) SetProfile(ctx context.Context, userID string, profile task.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.setSetting(ctx, userID, KeyProfile, string(raw))
}
