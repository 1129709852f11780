// Package kpi persists daily task KPI records in SQLite.
package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	core "github.com/warebotics/warebot/core/metrics/kpi"
)

// SQLiteStore persists KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS task_kpi (
        type TEXT,
        day INTEGER,
        completed INTEGER,
        canceled INTEGER,
        failed INTEGER,
        wait_seconds REAL,
        service_seconds REAL,
        path_meters REAL,
        PRIMARY KEY(type, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add merges the record into its day and type row.
func (s *SQLiteStore) Add(r core.Record) error {
	d := core.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO task_kpi
        (type, day, completed, canceled, failed, wait_seconds, service_seconds, path_meters)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(type, day) DO UPDATE SET
            completed = completed + excluded.completed,
            canceled = canceled + excluded.canceled,
            failed = failed + excluded.failed,
            wait_seconds = wait_seconds + excluded.wait_seconds,
            service_seconds = service_seconds + excluded.service_seconds,
            path_meters = path_meters + excluded.path_meters`,
		r.Type, d.Unix(), r.Completed, r.Canceled, r.Failed,
		r.WaitSeconds, r.ServiceSeconds, r.PathMeters)
	return err
}

// Query returns records in the range [start,end]. An empty taskType matches
// every type.
func (s *SQLiteStore) Query(taskType string, start, end time.Time) ([]core.Record, error) {
	startDay := core.Day(start)
	endDay := core.Day(end)
	rows, err := s.db.Query(`SELECT type, day, completed, canceled, failed,
            wait_seconds, service_seconds, path_meters
        FROM task_kpi
        WHERE (? = '' OR type = ?) AND day >= ? AND day <= ?
        ORDER BY day, type`,
		taskType, taskType, startDay.Unix(), endDay.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var r core.Record
		var day int64
		if err := rows.Scan(&r.Type, &day, &r.Completed, &r.Canceled, &r.Failed,
			&r.WaitSeconds, &r.ServiceSeconds, &r.PathMeters); err != nil {
			return nil, err
		}
		r.Date = time.Unix(day, 0).UTC()
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
