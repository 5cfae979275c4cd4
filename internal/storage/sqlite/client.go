package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

var ErrNotFound = errors.New("record not found")

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping() error {
	return c.db.Ping()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		gender TEXT,
		temperature REAL,
		severity REAL NOT NULL,
		urgency REAL NOT NULL,
		resource_need REAL NOT NULL,
		waiting_impact REAL NOT NULL,
		age_vulnerability REAL NOT NULL,
		pain_level REAL,
		condition_desc TEXT,
		vitals TEXT,
		registered_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_patients_registered ON patients(registered_at);

	CREATE TABLE IF NOT EXISTS specialists (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		expertise REAL NOT NULL,
		availability REAL NOT NULL,
		success_rate REAL NOT NULL,
		resource_access REAL NOT NULL,
		workload REAL NOT NULL,
		specialization TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_specialists_specialization ON specialists(specialization);

	CREATE TABLE IF NOT EXISTS system_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		tags TEXT,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_metrics_name ON system_metrics(metric_name);
	CREATE INDEX IF NOT EXISTS idx_metrics_timestamp ON system_metrics(timestamp);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) UpsertPatient(p *models.Patient) error {
	query := `
		INSERT INTO patients (id, name, age, gender, temperature, severity, urgency, resource_need,
			waiting_impact, age_vulnerability, pain_level, condition_desc, vitals, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			gender = excluded.gender,
			temperature = excluded.temperature,
			severity = excluded.severity,
			urgency = excluded.urgency,
			resource_need = excluded.resource_need,
			waiting_impact = excluded.waiting_impact,
			age_vulnerability = excluded.age_vulnerability,
			pain_level = excluded.pain_level,
			condition_desc = excluded.condition_desc,
			vitals = excluded.vitals
	`

	_, err := c.db.Exec(
		query,
		p.ID,
		p.Name,
		p.Age,
		p.Gender,
		p.Temperature,
		p.Severity,
		p.Urgency,
		p.ResourceNeed,
		p.WaitingImpact,
		p.AgeVulnerability,
		p.PainLevel,
		p.ConditionDesc,
		p.Vitals,
		p.RegisteredAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert patient: %w", err)
	}

	logger.Debug("Patient stored", zap.String("patient_id", p.ID))
	return nil
}

const patientColumns = `id, name, age, gender, temperature, severity, urgency, resource_need,
	waiting_impact, age_vulnerability, pain_level, condition_desc, vitals, registered_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (models.Patient, error) {
	var p models.Patient
	var registeredAt int64

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Age,
		&p.Gender,
		&p.Temperature,
		&p.Severity,
		&p.Urgency,
		&p.ResourceNeed,
		&p.WaitingImpact,
		&p.AgeVulnerability,
		&p.PainLevel,
		&p.ConditionDesc,
		&p.Vitals,
		&registeredAt,
	)
	if err != nil {
		return p, err
	}

	p.RegisteredAt = time.Unix(registeredAt, 0)
	return p, nil
}

func (c *Client) GetPatient(id string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = ?`

	p, err := scanPatient(c.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return &p, nil
}

// ListPatients returns patients in registration order. A non-positive limit
// returns every row.
func (c *Client) ListPatients(limit int) ([]models.Patient, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY registered_at ASC, id ASC LIMIT ?`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		patients = append(patients, p)
	}

	return patients, rows.Err()
}

func (c *Client) DeletePatient(id string) error {
	res, err := c.db.Exec(`DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}

	logger.Info("Patient deleted", zap.String("patient_id", id))
	return nil
}

func (c *Client) UpsertSpecialist(s *models.Specialist) error {
	query := `
		INSERT INTO specialists (id, label, expertise, availability, success_rate, resource_access, workload, specialization)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			expertise = excluded.expertise,
			availability = excluded.availability,
			success_rate = excluded.success_rate,
			resource_access = excluded.resource_access,
			workload = excluded.workload,
			specialization = excluded.specialization
	`

	_, err := c.db.Exec(
		query,
		s.ID,
		s.Label,
		s.Expertise,
		s.Availability,
		s.SuccessRate,
		s.ResourceAccess,
		s.Workload,
		s.Specialization,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert specialist: %w", err)
	}

	return nil
}

func (c *Client) GetSpecialist(id string) (*models.Specialist, error) {
	query := `SELECT id, label, expertise, availability, success_rate, resource_access, workload, specialization FROM specialists WHERE id = ?`

	var s models.Specialist
	err := c.db.QueryRow(query, id).Scan(
		&s.ID,
		&s.Label,
		&s.Expertise,
		&s.Availability,
		&s.SuccessRate,
		&s.ResourceAccess,
		&s.Workload,
		&s.Specialization,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("specialist %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get specialist: %w", err)
	}

	return &s, nil
}

// ListSpecialists returns specialists ordered by id so the routing matrix rows
// have a stable order between calls.
func (c *Client) ListSpecialists() ([]models.Specialist, error) {
	query := `SELECT id, label, expertise, availability, success_rate, resource_access, workload, specialization FROM specialists ORDER BY id`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialists: %w", err)
	}
	defer rows.Close()

	var specialists []models.Specialist
	for rows.Next() {
		var s models.Specialist
		err := rows.Scan(&s.ID, &s.Label, &s.Expertise, &s.Availability, &s.SuccessRate, &s.ResourceAccess, &s.Workload, &s.Specialization)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		specialists = append(specialists, s)
	}

	return specialists, rows.Err()
}

func (c *Client) RecordMetric(name string, value float64, tags map[string]string) error {
	tagsJSON, _ := json.Marshal(tags)

	query := `INSERT INTO system_metrics (metric_name, metric_value, tags, timestamp) VALUES (?, ?, ?, ?)`

	_, err := c.db.Exec(query, name, value, string(tagsJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}

	return nil
}

func (c *Client) GetMetrics(name string, limit int) ([]models.SystemMetric, error) {
	query := `SELECT id, metric_name, metric_value, tags, timestamp FROM system_metrics WHERE metric_name = ? ORDER BY timestamp DESC, id DESC LIMIT ?`

	rows, err := c.db.Query(query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	defer rows.Close()

	var metrics []models.SystemMetric
	for rows.Next() {
		var m models.SystemMetric
		var ts int64
		if err := rows.Scan(&m.ID, &m.MetricName, &m.MetricValue, &m.Tags, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		m.Timestamp = time.Unix(ts, 0)
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}
