package master

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrMasterNotFound = errors.New("master not found")
	ErrDetailNotFound = errors.New("detail not found")
)

type Repository interface {
	CreateMaster(ctx context.Context, m *Master) error
	GetMaster(ctx context.Context, id int64) (*Master, error)
	ListMasters(ctx context.Context) ([]Master, error)
	UpdateMaster(ctx context.Context, m *Master) error
	DeleteMaster(ctx context.Context, id int64) error

	CreateDetail(ctx context.Context, d *Detail) error
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	ListDetails(ctx context.Context) ([]Detail, error)
	ListDetailsForMaster(ctx context.Context, masterID int64) ([]Detail, error)
	UpdateDetail(ctx context.Context, d *Detail) error
	DeleteDetail(ctx context.Context, id int64) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) CreateMaster(ctx context.Context, m *Master) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO master (name) VALUES (?)`, m.Name,
	)
	if err != nil {
		return fmt.Errorf("insert master: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("master id: %w", err)
	}
	m.ID = id
	return nil
}

func (r *repo) GetMaster(ctx context.Context, id int64) (*Master, error) {
	var m Master
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM master WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMasterNotFound
		}
		return nil, fmt.Errorf("select master: %w", err)
	}
	return &m, nil
}

func (r *repo) ListMasters(ctx context.Context) ([]Master, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM master`)
	if err != nil {
		return nil, fmt.Errorf("select masters: %w", err)
	}
	defer rows.Close()

	var masters []Master
	for rows.Next() {
		var m Master
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan master: %w", err)
		}
		masters = append(masters, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return masters, nil
}

func (r *repo) UpdateMaster(ctx context.Context, m *Master) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE master SET name = ? WHERE id = ?`, m.Name, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update master: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrMasterNotFound
	}
	return nil
}

// DeleteMaster removes the master's details first and then the master row,
// mirroring the order delete path.
func (r *repo) DeleteMaster(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM detail WHERE master_id = ?`, id,
	); err != nil {
		return fmt.Errorf("delete details: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM master WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete master: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrMasterNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *repo) CreateDetail(ctx context.Context, d *Detail) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO detail (master_id, description) VALUES (?, ?)`,
		d.MasterID, d.Description,
	)
	if err != nil {
		return fmt.Errorf("insert detail: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("detail id: %w", err)
	}
	d.ID = id
	return nil
}

func (r *repo) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	var d Detail
	err := r.db.QueryRowContext(ctx,
		`SELECT id, master_id, description FROM detail WHERE id = ?`, id,
	).Scan(&d.ID, &d.MasterID, &d.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("select detail: %w", err)
	}
	return &d, nil
}

func (r *repo) ListDetails(ctx context.Context) ([]Detail, error) {
	return r.queryDetails(ctx, `SELECT id, master_id, description FROM detail`)
}

func (r *repo) ListDetailsForMaster(ctx context.Context, masterID int64) ([]Detail, error) {
	return r.queryDetails(ctx,
		`SELECT id, master_id, description FROM detail WHERE master_id = ?`, masterID)
}

func (r *repo) queryDetails(ctx context.Context, query string, args ...any) ([]Detail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select details: %w", err)
	}
	defer rows.Close()

	var details []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.MasterID, &d.Description); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return details, nil
}

func (r *repo) UpdateDetail(ctx context.Context, d *Detail) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE detail SET master_id = ?, description = ? WHERE id = ?`,
		d.MasterID, d.Description, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update detail: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrDetailNotFound
	}
	return nil
}

func (r *repo) DeleteDetail(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM detail WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete detail: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrDetailNotFound
	}
	return nil
}
