package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrNotFound   = errors.New("user not found")
)

// User é o modelo persistido no Postgres.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string
}

// Postgres implementa operações de persistência de usuários
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere um usuário novo; email duplicado retorna ErrEmailTaken
func (p *Postgres) Create(ctx context.Context, u *User) (string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, u.Email).Scan(&exists)
	if err == nil {
		return "", ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return "", err
	}

	id := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO users (id,email,password_hash,display_name,role)
		VALUES ($1,$2,$3,$4,$5)`,
		id, u.Email, u.PasswordHash, u.DisplayName, u.Role,
	); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetByEmail retorna o usuário pelo email
func (p *Postgres) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := p.db.QueryRowContext(ctx, `
		SELECT id,email,password_hash,display_name,role FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retorna o usuário pelo id
func (p *Postgres) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := p.db.QueryRowContext(ctx, `
		SELECT id,email,password_hash,display_name,role FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePassword troca o hash de senha do usuário
func (p *Postgres) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
