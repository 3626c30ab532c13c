package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/recurrence"
)

type AvailabilityStore struct {
	db *sql.DB
}

func NewAvailabilityStore(db *sql.DB) *AvailabilityStore {
	return &AvailabilityStore{db: db}
}

const availabilityCols = `id, member_id, start_date, end_date, reason, created_at`

func scanAvailability(scanner interface{ Scan(...any) error }) (*model.MemberAvailability, error) {
	var a model.MemberAvailability
	err := scanner.Scan(&a.ID, &a.MemberID, &a.StartDate, &a.EndDate, &a.Reason, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AvailabilityStore) Create(memberID string, start, end recurrence.Date, reason string) (*model.MemberAvailability, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO member_availability (id, member_id, start_date, end_date, reason) VALUES (?, ?, ?, ?, ?)`,
		id, memberID, start, end, reason,
	)
	if err != nil {
		return nil, fmt.Errorf("insert availability: %w", err)
	}
	return s.GetByID(id)
}

func (s *AvailabilityStore) GetByID(id string) (*model.MemberAvailability, error) {
	row := s.db.QueryRow(`SELECT `+availabilityCols+` FROM member_availability WHERE id = ?`, id)
	a, err := scanAvailability(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}
	return a, nil
}

func (s *AvailabilityStore) List() ([]model.MemberAvailability, error) {
	return s.query(`SELECT ` + availabilityCols + ` FROM member_availability ORDER BY start_date ASC`)
}

func (s *AvailabilityStore) ListByMember(memberID string) ([]model.MemberAvailability, error) {
	return s.query(`SELECT `+availabilityCols+` FROM member_availability WHERE member_id = ? ORDER BY start_date ASC`, memberID)
}

func (s *AvailabilityStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM member_availability WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	return nil
}

func (s *AvailabilityStore) query(query string, args ...any) ([]model.MemberAvailability, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	defer rows.Close()

	var out []model.MemberAvailability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
