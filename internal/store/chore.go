package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

// --- Category methods ---

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, name, color, icon, created_at`

func (s *ChoreStore) ListCategories() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *ChoreStore) GetCategoryByID(id string) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) CreateCategory(name, color, icon string) (*model.Category, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO categories (id, name, color, icon) VALUES (?, ?, ?, ?)`,
		id, name, color, icon,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return s.GetCategoryByID(id)
}

func (s *ChoreStore) DeleteCategory(id string) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// --- Chore methods ---

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var assigneeID, categoryID, autoAssign sql.NullString
	var estimate sql.NullInt64
	var freq string

	err := scanner.Scan(
		&c.ID, &c.Title, &c.Description, &c.Date, &c.StartTime, &c.EndTime, &c.AllDay,
		&assigneeID, &freq, &c.Priority, &categoryID, &estimate, &autoAssign,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Recurrence = recurrence.Freq(freq)
	if assigneeID.Valid {
		c.AssigneeID = &assigneeID.String
	}
	if categoryID.Valid {
		c.CategoryID = &categoryID.String
	}
	if estimate.Valid {
		n := int(estimate.Int64)
		c.EstimatedMinutes = &n
	}
	if autoAssign.Valid {
		var opts model.AssignOptions
		if err := json.Unmarshal([]byte(autoAssign.String), &opts); err != nil {
			return nil, fmt.Errorf("decode auto_assign: %w", err)
		}
		c.AutoAssign = &opts
	}
	return &c, nil
}

const choreCols = `id, title, description, date, start_time, end_time, all_day, assignee_id, recurrence,
	priority, category_id, estimated_minutes, auto_assign, created_at, updated_at`

// choreArgs returns the column values shared by insert and update, in
// choreCols order from title through auto_assign.
func choreArgs(c model.Chore) ([]any, error) {
	var auto sql.NullString
	if c.AutoAssign != nil {
		b, err := json.Marshal(c.AutoAssign)
		if err != nil {
			return nil, fmt.Errorf("encode auto_assign: %w", err)
		}
		auto = sql.NullString{String: string(b), Valid: true}
	}

	var estimate sql.NullInt64
	if c.EstimatedMinutes != nil {
		estimate = sql.NullInt64{Int64: int64(*c.EstimatedMinutes), Valid: true}
	}

	return []any{
		c.Title, c.Description, c.Date, c.StartTime, c.EndTime, c.AllDay,
		nullString(c.AssigneeID), c.Recurrence.String(), string(c.Priority), nullString(c.CategoryID),
		estimate, auto,
	}, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func (s *ChoreStore) Create(c model.Chore) (*model.Chore, error) {
	args, err := choreArgs(c)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO chores (id, title, description, date, start_time, end_time, all_day, assignee_id, recurrence,
		 priority, category_id, estimated_minutes, auto_assign) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{id}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id string) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) List() ([]model.Chore, error) {
	rows, err := s.db.Query(`SELECT ` + choreCols + ` FROM chores ORDER BY date ASC, created_at ASC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(c model.Chore) (*model.Chore, error) {
	args, err := choreArgs(c)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE chores SET title = ?, description = ?, date = ?, start_time = ?, end_time = ?, all_day = ?,
		 assignee_id = ?, recurrence = ?, priority = ?, category_id = ?, estimated_minutes = ?, auto_assign = ?
		 WHERE id = ?`,
		append(args, c.ID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(c.ID)
}

// Assign applies a batch of chore id to member id assignments atomically.
func (s *ChoreStore) Assign(assignments map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE chores SET assignee_id = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for choreID, memberID := range assignments {
		if _, err := stmt.Exec(memberID, choreID); err != nil {
			return fmt.Errorf("assign chore %s: %w", choreID, err)
		}
	}
	return tx.Commit()
}

func (s *ChoreStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// --- Completion methods ---

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.ChoreCompletion, error) {
	var c model.ChoreCompletion
	err := scanner.Scan(&c.ID, &c.ChoreID, &c.InstanceDate, &c.CompletedBy, &c.CompletedAt, &c.Notes)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const completionCols = `id, chore_id, instance_date, completed_by, completed_at, notes`

func (s *ChoreStore) CreateCompletion(c model.ChoreCompletion) (*model.ChoreCompletion, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO chore_completions (id, chore_id, instance_date, completed_by, completed_at, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		id, c.ChoreID, c.InstanceDate, c.CompletedBy, c.CompletedAt.UTC(), c.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+completionCols+` FROM chore_completions WHERE id = ?`, id)
	return scanCompletion(row)
}

func (s *ChoreStore) DeleteCompletion(id string) error {
	_, err := s.db.Exec(`DELETE FROM chore_completions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	return nil
}

func (s *ChoreStore) ListCompletions() ([]model.ChoreCompletion, error) {
	return s.queryCompletions(`SELECT ` + completionCols + ` FROM chore_completions ORDER BY completed_at DESC`)
}

func (s *ChoreStore) ListCompletionsByMember(memberID string) ([]model.ChoreCompletion, error) {
	return s.queryCompletions(
		`SELECT `+completionCols+` FROM chore_completions WHERE completed_by = ? ORDER BY completed_at DESC`,
		memberID,
	)
}

// ListCompletionsBetween returns completions whose instance date lies in
// [start, end]. A zero bound leaves that side of the range open.
func (s *ChoreStore) ListCompletionsBetween(start, end recurrence.Date) ([]model.ChoreCompletion, error) {
	query := `SELECT ` + completionCols + ` FROM chore_completions WHERE 1=1`
	var args []any
	if !start.IsZero() {
		query += ` AND instance_date >= ?`
		args = append(args, start)
	}
	if !end.IsZero() {
		query += ` AND instance_date <= ?`
		args = append(args, end)
	}
	return s.queryCompletions(query+` ORDER BY completed_at DESC`, args...)
}

func (s *ChoreStore) queryCompletions(query string, args ...any) ([]model.ChoreCompletion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.ChoreCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}
