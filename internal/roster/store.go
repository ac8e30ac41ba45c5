package roster

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/peladaclub/rachao/internal/rating"
)

// store handles all database operations for the roster.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new roster store backed by the given database.
func New(db *sql.DB) Store {
	return &store{db: db}
}

// sanitize clamps every skill value into bounds. Skill maps arrive from
// outside the engine and are not trusted blindly.
func sanitize(skills rating.SkillMap) rating.SkillMap {
	if skills == nil {
		return nil
	}
	out := make(rating.SkillMap, len(skills))
	for k, v := range skills {
		out[k] = rating.Clamp(v)
	}
	return out
}

func marshalSkills(skills rating.SkillMap) ([]byte, error) {
	if skills == nil {
		return nil, nil
	}
	return json.Marshal(sanitize(skills))
}

func unmarshalSkills(blob []byte) rating.SkillMap {
	if len(blob) == 0 {
		return nil
	}
	var skills rating.SkillMap
	if err := json.Unmarshal(blob, &skills); err != nil {
		log.Warn("Failed to unmarshal skill map, treating as absent", "error", err)
		return nil
	}
	return skills
}

func (s *store) GetPlayer(id string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, position, matches_played, self_skills_json, peer_skills_json, admin_skills_json
		FROM players WHERE id = ?`, id)

	player, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*Player, error) {
	var p Player
	var selfBlob, peerBlob, adminBlob []byte
	err := row.Scan(&p.ID, &p.Name, &p.Position, &p.MatchesPlayed, &selfBlob, &peerBlob, &adminBlob)
	if err != nil {
		return nil, err
	}
	p.SelfSkills = unmarshalSkills(selfBlob)
	p.PeerSkills = unmarshalSkills(peerBlob)
	p.AdminSkills = unmarshalSkills(adminBlob)
	return &p, nil
}

func (s *store) GetPlayers(ids []string) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(ids) == 0 {
		return []Player{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`
		SELECT id, name, position, matches_played, self_skills_json, peer_skills_json, admin_skills_json
		FROM players WHERE id IN (%s)`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (s *store) AllPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, position, matches_played, self_skills_json, peer_skills_json, admin_skills_json
		FROM players ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (s *store) UpsertPlayers(players []Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO players (id, name, position, matches_played, self_skills_json, peer_skills_json, admin_skills_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			position = excluded.position,
			self_skills_json = excluded.self_skills_json,
			peer_skills_json = excluded.peer_skills_json,
			admin_skills_json = excluded.admin_skills_json
	`
	for _, p := range players {
		selfBlob, err := marshalSkills(p.SelfSkills)
		if err != nil {
			return fmt.Errorf("failed to marshal self skills for %s: %w", p.ID, err)
		}
		peerBlob, err := marshalSkills(p.PeerSkills)
		if err != nil {
			return fmt.Errorf("failed to marshal peer skills for %s: %w", p.ID, err)
		}
		adminBlob, err := marshalSkills(p.AdminSkills)
		if err != nil {
			return fmt.Errorf("failed to marshal admin skills for %s: %w", p.ID, err)
		}
		if _, err := tx.Exec(query, p.ID, p.Name, string(p.Position), p.MatchesPlayed, selfBlob, peerBlob, adminBlob); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert transaction: %w", err)
	}
	log.Debug("Upserted players", "count", len(players))
	return nil
}

func (s *store) UpdatePlayer(id string, update PlayerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setClauses := []string{}
	args := []any{}

	appendSkills := func(column string, skills rating.SkillMap) error {
		if skills == nil {
			return nil
		}
		blob, err := marshalSkills(skills)
		if err != nil {
			return fmt.Errorf("failed to marshal %s for %s: %w", column, id, err)
		}
		setClauses = append(setClauses, column+" = ?")
		args = append(args, blob)
		return nil
	}

	if err := appendSkills("self_skills_json", update.SelfSkills); err != nil {
		return err
	}
	if err := appendSkills("peer_skills_json", update.PeerSkills); err != nil {
		return err
	}
	if err := appendSkills("admin_skills_json", update.AdminSkills); err != nil {
		return err
	}
	if update.MatchesPlayed != nil {
		setClauses = append(setClauses, "matches_played = ?")
		args = append(args, *update.MatchesPlayed)
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE players SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	args = append(args, id)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("player not found: %s", id)
	}
	log.Debug("Updated player", "id", id)
	return nil
}

func (s *store) IsKnownPlayer(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found string
	err := s.db.QueryRow("SELECT id FROM players WHERE id = ?", id).Scan(&found)
	return err == nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM players"); err != nil {
		log.Error("Failed to clear players", "error", err)
	}
}
