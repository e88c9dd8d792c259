package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/models"
)

func GetContactsSQL(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Contact, error) {
	query := `
		SELECT id, user_id, external_id, email, first_name, last_name, company, created_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		err := rows.Scan(&c.ID, &c.UserID, &c.ExternalID, &c.Email, &c.FirstName, &c.LastName, &c.Company, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func CreateContact(ctx context.Context, pool *pgxpool.Pool, contact *models.Contact) (*models.Contact, error) {
	query := `
		INSERT INTO contacts (user_id, external_id, email, first_name, last_name, company)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := pool.QueryRow(ctx, query, contact.UserID, contact.ExternalID, contact.Email, contact.FirstName, contact.LastName, contact.Company).
		Scan(&contact.ID, &contact.CreatedAt)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func UpsertContactByExternalID(ctx context.Context, pool *pgxpool.Pool, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (user_id, external_id, email, first_name, last_name, company)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, external_id) DO UPDATE
		SET email = EXCLUDED.email, first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name, company = EXCLUDED.company
	`
	_, err := pool.Exec(ctx, query, contact.UserID, contact.ExternalID, contact.Email, contact.FirstName, contact.LastName, contact.Company)
	return err
}

func DeleteContact(ctx context.Context, pool *pgxpool.Pool, userID, contactID int64) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, contactID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("contact not found")
	}
	return nil
}
