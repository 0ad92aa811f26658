package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements identity persistence over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are safely quoted to avoid SQL injection via identifiers.
// - Uniqueness of username/email is enforced by the database constraints; a
//   unique violation is the authoritative Conflict signal. There is no prior
//   existence check, so concurrent creates cannot slip through a race window.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the identity store (default "public").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "public",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const userColumns = `id, username, email, password_hash, full_name, bio, avatar_url, role, created_at, updated_at`

// FindByEmail looks a user up by normalized email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.FindByEmail"

	email = NormalizeEmail(email)
	if email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+s.users()+` WHERE email = $1`,
		email,
	)
	return scanUser(op, row)
}

// FindByID looks a user up by primary key.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (User, error) {
	const op = "identity.FindByID"

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+s.users()+` WHERE id = $1`,
		id,
	)
	return scanUser(op, row)
}

// CreateUser inserts a new user. A duplicate username or email surfaces as a
// ConflictError classified from the violated constraint.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	in, err := validateCreate(op, in)
	if err != nil {
		return User{}, err
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO `+s.users()+` (
		     username, email, password_hash, full_name, bio, avatar_url, role
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7)
		   RETURNING `+userColumns,
		in.Username,
		in.Email,
		in.PasswordHash,
		in.FullName,
		in.Bio,
		in.AvatarURL,
		string(in.Role),
	)

	u, err := scanUser(op, row)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}
	return u, nil
}

// UpdateUser applies the non-nil fields of in and refreshes updated_at.
func (s *PostgresStore) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (User, error) {
	const op = "identity.UpdateUser"

	if err := validateUpdate(op, in); err != nil {
		return User{}, err
	}

	var role *string
	if in.Role != nil {
		r := string(*in.Role)
		role = &r
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE `+s.users()+` SET
		     password_hash = COALESCE($2, password_hash),
		     full_name     = COALESCE($3, full_name),
		     bio           = COALESCE($4, bio),
		     avatar_url    = COALESCE($5, avatar_url),
		     role          = COALESCE($6, role),
		     updated_at    = now()
		   WHERE id = $1
		   RETURNING `+userColumns,
		id,
		in.PasswordHash,
		in.FullName,
		in.Bio,
		in.AvatarURL,
		role,
	)
	return scanUser(op, row)
}

func (s *PostgresStore) users() string {
	return pgIdent(s.schema, "users")
}

func scanUser(op string, row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Bio,
		&u.AvatarURL,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

func pgIdent(schema, name string) string {
	return `"` + schema + `"."` + name + `"`
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names. Fall back to heuristic substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))

	switch c {
	case "uq_users_username":
		return "username", true
	case "uq_users_email":
		return "email", true
	default:
		switch {
		case strings.Contains(c, "username"):
			return "username", true
		case strings.Contains(c, "email"):
			return "email", true
		default:
			return "unique", true
		}
	}
}
