package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Profile summarizes a stored set of consumable costs.
type Profile struct {
	Name      string
	Entries   int
	UpdatedAt time.Time
}

// SaveProfile stores costs under name, replacing any previous contents.
func (d *Database) SaveProfile(name string, costs map[string]float64) error {
	if name == "" {
		return errors.New("profile name is required")
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec(d.bind(`
		INSERT INTO rate_profiles (name, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET updated_at = excluded.updated_at
	`), name, now, now)
	if err != nil {
		return fmt.Errorf("upsert profile %q: %w", name, err)
	}

	var id int64
	if err := tx.QueryRow(d.bind(`SELECT id FROM rate_profiles WHERE name = ?`), name).Scan(&id); err != nil {
		return err
	}
	if _, err := tx.Exec(d.bind(`DELETE FROM rate_costs WHERE profile_id = ?`), id); err != nil {
		return err
	}

	ids := make([]string, 0, len(costs))
	for cid := range costs {
		ids = append(ids, cid)
	}
	sort.Strings(ids)
	insert := d.bind(`INSERT INTO rate_costs (profile_id, consumable_id, seconds) VALUES (?, ?, ?)`)
	for _, cid := range ids {
		if _, err := tx.Exec(insert, id, cid, costs[cid]); err != nil {
			return fmt.Errorf("store cost %q: %w", cid, err)
		}
	}
	return tx.Commit()
}

// LoadProfile returns the costs stored under name.
func (d *Database) LoadProfile(name string) (map[string]float64, error) {
	var id int64
	err := d.db.QueryRow(d.bind(`SELECT id FROM rate_profiles WHERE name = ?`), name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(d.bind(`SELECT consumable_id, seconds FROM rate_costs WHERE profile_id = ?`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := make(map[string]float64)
	for rows.Next() {
		var cid string
		var s float64
		if err := rows.Scan(&cid, &s); err != nil {
			return nil, err
		}
		costs[cid] = s
	}
	return costs, rows.Err()
}

// ListProfiles returns every profile ordered by name.
func (d *Database) ListProfiles() ([]Profile, error) {
	rows, err := d.db.Query(`
		SELECT p.name, p.updated_at, COUNT(c.consumable_id)
		FROM rate_profiles p
		LEFT JOIN rate_costs c ON c.profile_id = p.id
		GROUP BY p.id, p.name, p.updated_at
		ORDER BY p.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.Name, &p.UpdatedAt, &p.Entries); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes name and its costs.
func (d *Database) DeleteProfile(name string) error {
	res, err := d.db.Exec(d.bind(`DELETE FROM rate_profiles WHERE name = ?`), name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	return nil
}
