package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("student not found")

// Repository persists student accounts.
type Repository interface {
	Create(ctx context.Context, student Student) error
	FindByID(ctx context.Context, id string) (Student, error)
	FindByAdmissionNumber(ctx context.Context, admissionNumber string) (Student, error)
	FindByEmail(ctx context.Context, email string) (Student, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed student repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const studentColumns = `id, name, email, password_hash, date_of_birth, gender, mobile, admission_number, created_at`

// Create inserts a new student. A unique violation on the admission number or
// email column is the authoritative conflict signal; any pre-check in the
// service layer is only an optimization.
func (r *PostgresRepository) Create(ctx context.Context, student Student) error {
	studentID, err := uuid.Parse(student.ID)
	if err != nil {
		return err
	}
	var email any
	if student.Email != "" {
		email = student.Email
	}
	_, err = r.db.Exec(ctx, `INSERT INTO students (id, name, email, password_hash, date_of_birth, gender, mobile, admission_number, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		studentID, student.Name, email, student.PasswordHash, student.DateOfBirth,
		student.Gender, student.Mobile, student.AdmissionNumber, student.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == "students_email_key" {
				return ErrDuplicateEmail
			}
			return ErrDuplicateAdmission
		}
		return err
	}
	return nil
}

// FindByID fetches a student by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Student, error) {
	studentID, err := uuid.Parse(id)
	if err != nil {
		return Student{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, studentID))
}

// FindByAdmissionNumber fetches a student by admission number, hash included.
func (r *PostgresRepository) FindByAdmissionNumber(ctx context.Context, admissionNumber string) (Student, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE admission_number = $1`, admissionNumber))
}

// FindByEmail fetches a student by email, hash included.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Student, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE email = $1`, email))
}

// UpdatePassword replaces the stored hash for an existing student.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	studentID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE students SET password_hash = $1 WHERE id = $2`, hash, studentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (Student, error) {
	var (
		id        uuid.UUID
		email     *string
		dob       time.Time
		createdAt time.Time
		student   Student
	)
	if err := row.Scan(&id, &student.Name, &email, &student.PasswordHash, &dob,
		&student.Gender, &student.Mobile, &student.AdmissionNumber, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, err
	}
	student.ID = id.String()
	if email != nil {
		student.Email = *email
	}
	student.DateOfBirth = dob
	student.CreatedAt = createdAt.UTC()
	return student, nil
}
