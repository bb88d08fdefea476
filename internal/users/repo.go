package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Get(ctx context.Context, id string) (Profile, error) {
	var p Profile
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, username, phone_number, address
		FROM users WHERE id = $1`, id).
		Scan(&p.ID, &p.Email, &p.Username, &p.PhoneNumber, &p.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return p, nil
}
