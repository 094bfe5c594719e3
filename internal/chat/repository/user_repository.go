package repository

import (
	"context"
	"fmt"

	"chat_presence_service/internal/chat/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserRepository member directory owned by member_service, read only here
type UserRepository interface {
	Exists(ctx context.Context, memberID string) (bool, error)
	ListExcept(ctx context.Context, memberID string) ([]domain.Contact, error)
}

type pgUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository create a UserRepository
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Exists(ctx context.Context, memberID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM member WHERE member_id = $1 AND status <> 3)", memberID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check member %s: %w", memberID, err)
	}
	return exists, nil
}

func (r *pgUserRepository) ListExcept(ctx context.Context, memberID string) ([]domain.Contact, error) {
	rows, err := r.db.Query(ctx, `
      SELECT member_id, email, COALESCE(full_name, ''), COALESCE(profile_pic, '')
      FROM member
      WHERE member_id <> $1 AND status <> 3
      ORDER BY full_name, member_id
    `, memberID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return scanContacts(rows)
}

func scanContacts(rows pgx.Rows) ([]domain.Contact, error) {
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.Email, &c.FullName, &c.ProfilePic); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
