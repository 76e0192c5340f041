package users

import (
	"context"
	"database/sql"

	"github.com/JaimeStill/guidesync/pkg/query"
	"github.com/JaimeStill/guidesync/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("email", "Email").
	Project("name", "Name").
	Project("password_hash", "PasswordHash").
	Project("role", "Role").
	Project("trust_name", "TrustName").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Store persists user accounts. Emails are stored lowercased.
type Store interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	Insert(ctx context.Context, u User) error
}

type repo struct {
	db *sql.DB
}

// NewRepository creates a PostgreSQL-backed Store.
func NewRepository(db *sql.DB) Store {
	return &repo{db: db}
}

func (r *repo) FindByEmail(ctx context.Context, email string) (User, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Email", email)

	u, err := repository.QueryOne(ctx, r.db, q, args, scanUser)
	if err != nil {
		return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return u, nil
}

func (r *repo) Insert(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO users(id, email, name, password_hash, role, trust_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), u.TrustName, u.CreatedAt, u.UpdatedAt,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.TrustName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
