package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/models"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, super_admin,
	meta_access_token, meta_ad_account_id, hubspot_access_token, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.SuperAdmin,
		&user.MetaAccessToken,
		&user.MetaAdAccountID,
		&user.HubSpotToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByID(id int64, pool *pgxpool.Pool) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(pool.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func GetUserByUsername(username string, pool *pgxpool.Pool) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(pool.QueryRow(context.Background(), query, username))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return user, nil
}

func GetUserByEmail(email string, pool *pgxpool.Pool) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(pool.QueryRow(context.Background(), query, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return user, nil
}

func CreateUser(req models.RegisterRequest, hashedPassword string, pool *pgxpool.Pool) (*models.RegisterResponse, error) {
	query := `
		INSERT INTO users (first_name, last_name, username, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var userID int64

	err := pool.QueryRow(
		context.Background(),
		query,
		req.FirstName,
		req.LastName,
		req.Username,
		req.Email,
		hashedPassword,
	).Scan(&userID)

	if err != nil {
		return nil, err
	}

	return &models.RegisterResponse{
		ID:        userID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, nil
}

func UpdateUser(ctx context.Context, pool *pgxpool.Pool, userID int64, firstName, lastName, email string) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, updated_at = NOW()
		WHERE id = $4
	`
	cmd, err := pool.Exec(ctx, query, firstName, lastName, email, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

func UpdateUserPassword(ctx context.Context, pool *pgxpool.Pool, userID int64, hashedPassword string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	_, err := pool.Exec(ctx, query, hashedPassword, userID)
	return err
}

func DeleteUser(ctx context.Context, pool *pgxpool.Pool, userID int64) error {
	query := `DELETE FROM users WHERE id = $1`
	cmd, err := pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("user not found")
	}
	return nil
}

func GetAllUsers(ctx context.Context, pool *pgxpool.Pool) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func SaveMetaCredentials(ctx context.Context, pool *pgxpool.Pool, userID int64, accessToken, adAccountID string) error {
	query := `
		UPDATE users
		SET meta_access_token = $1, meta_ad_account_id = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := pool.Exec(ctx, query, accessToken, adAccountID, userID)
	return err
}

func SaveHubSpotToken(ctx context.Context, pool *pgxpool.Pool, userID int64, accessToken string) error {
	query := `UPDATE users SET hubspot_access_token = $1, updated_at = NOW() WHERE id = $2`
	_, err := pool.Exec(ctx, query, accessToken, userID)
	return err
}
