package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/chorecal/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, name, color, avatar_url, email, skills, working_hours, weekly_capacity_minutes,
	points, badges, pin IS NOT NULL, sort_order, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.TeamMember, error) {
	var m model.TeamMember
	var skills, badges string
	var workingHours sql.NullString
	var capacity sql.NullInt64

	err := scanner.Scan(
		&m.ID, &m.Name, &m.Color, &m.AvatarURL, &m.Email, &skills, &workingHours, &capacity,
		&m.Points, &badges, &m.HasPIN, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(skills), &m.Skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	if err := json.Unmarshal([]byte(badges), &m.Badges); err != nil {
		return nil, fmt.Errorf("decode badges: %w", err)
	}
	if workingHours.Valid {
		var wh model.WorkingHours
		if err := json.Unmarshal([]byte(workingHours.String), &wh); err != nil {
			return nil, fmt.Errorf("decode working hours: %w", err)
		}
		m.WorkingHours = &wh
	}
	if capacity.Valid {
		n := int(capacity.Int64)
		m.WeeklyCapacityMinutes = &n
	}
	return &m, nil
}

// memberArgs encodes the profile columns shared by insert and update.
func memberArgs(m model.TeamMember) (skills, workingHours, capacity any, err error) {
	if m.Skills == nil {
		m.Skills = []string{}
	}
	b, err := json.Marshal(m.Skills)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode skills: %w", err)
	}
	skills = string(b)

	var wh sql.NullString
	if m.WorkingHours != nil {
		b, err := json.Marshal(m.WorkingHours)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("encode working hours: %w", err)
		}
		wh = sql.NullString{String: string(b), Valid: true}
	}

	var c sql.NullInt64
	if m.WeeklyCapacityMinutes != nil {
		c = sql.NullInt64{Int64: int64(*m.WeeklyCapacityMinutes), Valid: true}
	}
	return skills, wh, c, nil
}

// Create inserts a member profile. Points and badges start empty.
func (s *MemberStore) Create(m model.TeamMember) (*model.TeamMember, error) {
	var maxOrder int
	err := s.db.QueryRow("SELECT COALESCE(MAX(sort_order), -1) FROM team_members").Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query max sort_order: %w", err)
	}

	skills, wh, capacity, err := memberArgs(m)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO team_members (id, name, color, avatar_url, email, skills, working_hours, weekly_capacity_minutes, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.Name, m.Color, m.AvatarURL, m.Email, skills, wh, capacity, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert team member: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id string) (*model.TeamMember, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM team_members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get team member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) List() ([]model.TeamMember, error) {
	rows, err := s.db.Query(`SELECT ` + memberCols + ` FROM team_members ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// Colors returns the colours already taken by members.
func (s *MemberStore) Colors() ([]string, error) {
	rows, err := s.db.Query(`SELECT color FROM team_members ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list member colors: %w", err)
	}
	defer rows.Close()

	var colors []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan member color: %w", err)
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// Update replaces the profile fields of a member. Points and badges are
// left alone.
func (s *MemberStore) Update(m model.TeamMember) (*model.TeamMember, error) {
	skills, wh, capacity, err := memberArgs(m)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE team_members SET name = ?, color = ?, avatar_url = ?, email = ?, skills = ?, working_hours = ?,
		 weekly_capacity_minutes = ? WHERE id = ?`,
		m.Name, m.Color, m.AvatarURL, m.Email, skills, wh, capacity, m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update team member: %w", err)
	}
	return s.GetByID(m.ID)
}

// UpdateScore stores a member's point total and badge list.
func (s *MemberStore) UpdateScore(id string, points int, badges []string) error {
	if badges == nil {
		badges = []string{}
	}
	b, err := json.Marshal(badges)
	if err != nil {
		return fmt.Errorf("encode badges: %w", err)
	}

	_, err = s.db.Exec(`UPDATE team_members SET points = ?, badges = ? WHERE id = ?`, points, string(b), id)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}

func (s *MemberStore) Delete(id string) error {
	_, err := s.db.Exec("DELETE FROM team_members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	return nil
}

func (s *MemberStore) SetPIN(id string, hashedPIN string) error {
	_, err := s.db.Exec("UPDATE team_members SET pin = ? WHERE id = ?", hashedPIN, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *MemberStore) ClearPIN(id string) error {
	_, err := s.db.Exec("UPDATE team_members SET pin = NULL WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

// GetPINHash returns the stored hash, or "" when the member has no PIN.
func (s *MemberStore) GetPINHash(id string) (string, error) {
	var pin sql.NullString
	err := s.db.QueryRow("SELECT pin FROM team_members WHERE id = ?", id).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("team member not found")
	}
	if err != nil {
		return "", fmt.Errorf("query pin: %w", err)
	}
	if !pin.Valid {
		return "", nil
	}
	return pin.String, nil
}

func (s *MemberStore) NameExists(name string, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM team_members WHERE name = ? AND id != ?",
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check name exists: %w", err)
	}
	return count > 0, nil
}
