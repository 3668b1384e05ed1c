package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/estate-desk/internal/types"
)

const contactColumns = `id, agency_id, kind, name, email, phone, created_at`

// CreateContact inserts a contact and fills in its ID and creation time
func (db *DB) CreateContact(ctx context.Context, c *types.Contact) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO contacts (agency_id, kind, name, email, phone)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		c.AgencyID, string(c.Kind), c.Name, c.Email, c.Phone,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetContact retrieves a contact of an agency by ID; nil when missing
func (db *DB) GetContact(ctx context.Context, agencyID, contactID uuid.UUID) (*types.Contact, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND agency_id = $2`,
		contactID, agencyID,
	)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListContacts retrieves the contacts of one kind for an agency, oldest first.
// The order matters: the detector seeds groups in input order.
func (db *DB) ListContacts(ctx context.Context, agencyID uuid.UUID, kind types.ContactKind) ([]types.Contact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts
		 WHERE agency_id = $1 AND kind = $2
		 ORDER BY created_at ASC, id ASC`,
		agencyID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []types.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// DeleteContact deletes a contact of an agency
func (db *DB) DeleteContact(ctx context.Context, agencyID, contactID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND agency_id = $2`,
		contactID, agencyID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	return nil
}

func scanContact(row pgx.Row) (*types.Contact, error) {
	var c types.Contact
	var kind string
	if err := row.Scan(&c.ID, &c.AgencyID, &kind, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Kind = types.ContactKind(kind)
	return &c, nil
}
