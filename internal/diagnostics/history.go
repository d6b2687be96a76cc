package diagnostics

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// HistorySink is the ambient, optional §6 Port: History sink.
type HistorySink interface {
	Record(HealthSnapshot) error
	Close() error
}

// MySQLHistorySink appends every snapshot to a flat history table for
// ground review, grounded on the reference pack's use of
// github.com/go-sql-driver/mysql as the database/sql driver of choice.
type MySQLHistorySink struct {
	db *sql.DB
}

// NewMySQLHistorySink opens dsn and ensures the history table exists.
func NewMySQLHistorySink(dsn string) (*MySQLHistorySink, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: open mysql history sink: %w", err)
	}
	const ddl = `CREATE TABLE IF NOT EXISTS iop_health_history (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		device_id VARCHAR(64) NOT NULL,
		time_ms BIGINT UNSIGNED NOT NULL,
		boot_fault BOOLEAN NOT NULL,
		payload BLOB NOT NULL,
		recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("diagnostics: create history table: %w", err)
	}
	return &MySQLHistorySink{db: db}, nil
}

// Record appends one snapshot.
func (s *MySQLHistorySink) Record(snap HealthSnapshot) error {
	payload, err := Encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO iop_health_history (device_id, time_ms, boot_fault, payload) VALUES (?, ?, ?, ?)`,
		snap.DeviceID, snap.TimeMs, snap.BootFault, payload,
	)
	if err != nil {
		return fmt.Errorf("diagnostics: insert history row: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *MySQLHistorySink) Close() error {
	return s.db.Close()
}
