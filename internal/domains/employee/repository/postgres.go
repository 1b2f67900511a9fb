package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staff-directory/internal/domains/employee/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresEmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &postgresEmployeeRepository{pool: pool}
}

const employeeColumns = `
	id, name,
	email, show_email,
	official_phone, show_official_phone,
	personal_phone, show_personal_phone,
	designation, department, category, serial,
	sorting_order, is_published, image,
	owner_id, created_at, updated_at`

// =====================================================
// GET BY ID
// =====================================================

func (r *postgresEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewEmployeeNotFoundError()
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresEmployeeRepository) Create(ctx context.Context, e *model.Employee) error {
	image, err := encodeImage(e.Image)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO employees (
			id, name,
			email, show_email,
			official_phone, show_official_phone,
			personal_phone, show_personal_phone,
			designation, department, category, serial,
			sorting_order, is_published, image, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	err = r.pool.QueryRow(ctx, query,
		e.ID,
		e.Name,
		e.Email,
		e.ShowEmail,
		e.OfficialPhone,
		e.ShowOfficialPhone,
		e.PersonalPhone,
		e.ShowPersonalPhone,
		e.Designation,
		e.Department,
		string(e.Category),
		e.Serial,
		e.SortingOrder,
		e.IsPublished,
		image,
		e.OwnerID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// =====================================================
// UPDATE
// =====================================================

func (r *postgresEmployeeRepository) Update(ctx context.Context, e *model.Employee) error {
	image, err := encodeImage(e.Image)
	if err != nil {
		return err
	}

	query := `
		UPDATE employees SET
			name = $2,
			email = $3,
			show_email = $4,
			official_phone = $5,
			show_official_phone = $6,
			personal_phone = $7,
			show_personal_phone = $8,
			designation = $9,
			department = $10,
			category = $11,
			serial = $12,
			sorting_order = $13,
			is_published = $14,
			image = $15,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err = r.pool.QueryRow(ctx, query,
		e.ID,
		e.Name,
		e.Email,
		e.ShowEmail,
		e.OfficialPhone,
		e.ShowOfficialPhone,
		e.PersonalPhone,
		e.ShowPersonalPhone,
		e.Designation,
		e.Department,
		string(e.Category),
		e.Serial,
		e.SortingOrder,
		e.IsPublished,
		image,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewEmployeeNotFoundError()
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}

	return nil
}

// =====================================================
// DELETE
// =====================================================

func (r *postgresEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewEmployeeNotFoundError()
	}
	return nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresEmployeeRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.Employee, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]*model.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

func (r *postgresEmployeeRepository) DistinctDepartments(ctx context.Context, category model.Category) ([]string, error) {
	query := `
		SELECT department
		FROM employees
		WHERE category = $1 AND is_published = TRUE
		GROUP BY department
		ORDER BY MIN(serial), department
	`

	rows, err := r.pool.Query(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	departments := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate departments: %w", err)
	}

	return departments, nil
}

// buildListQuery turns the filter into a parameterized SELECT.
func buildListQuery(filter model.ListFilter) (string, []interface{}) {
	var qb strings.Builder
	qb.WriteString(`SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`)

	args := []interface{}{}
	argPos := 1

	if filter.OwnerID != nil {
		qb.WriteString(fmt.Sprintf(" AND owner_id = $%d", argPos))
		args = append(args, *filter.OwnerID)
		argPos++
	}
	if filter.Category != nil {
		qb.WriteString(fmt.Sprintf(" AND category = $%d", argPos))
		args = append(args, string(*filter.Category))
		argPos++
	}
	if filter.Department != nil {
		qb.WriteString(fmt.Sprintf(" AND department = $%d", argPos))
		args = append(args, *filter.Department)
		argPos++
	}
	if filter.PublishedOnly {
		qb.WriteString(" AND is_published = TRUE")
	}

	switch filter.Order {
	case model.OrderDirectory:
		// 'Department' sorts before 'Office'
		qb.WriteString(" ORDER BY category ASC, serial ASC, sorting_order ASC NULLS LAST, name ASC")
	case model.OrderSortingOrder:
		qb.WriteString(" ORDER BY sorting_order ASC NULLS LAST, name ASC")
	default:
		qb.WriteString(" ORDER BY created_at DESC")
	}

	return qb.String(), args
}

func scanEmployee(row pgx.Row) (*model.Employee, error) {
	var (
		e        model.Employee
		category string
		image    []byte
	)

	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.ShowEmail,
		&e.OfficialPhone,
		&e.ShowOfficialPhone,
		&e.PersonalPhone,
		&e.ShowPersonalPhone,
		&e.Designation,
		&e.Department,
		&category,
		&e.Serial,
		&e.SortingOrder,
		&e.IsPublished,
		&image,
		&e.OwnerID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Category = model.Category(category)
	if e.Image, err = decodeImage(image); err != nil {
		return nil, err
	}
	return &e, nil
}

// encodeImage returns nil (SQL NULL) for an absent image.
func encodeImage(img *model.Image) (interface{}, error) {
	if img == nil {
		return nil, nil
	}
	if !img.Complete() {
		return nil, fmt.Errorf("refusing to store incomplete image reference")
	}
	data, err := json.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return string(data), nil
}

func decodeImage(data []byte) (*model.Image, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var img model.Image
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if !img.Complete() {
		return nil, nil
	}
	return &img, nil
}
