package postgres

import (
	"database/sql"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/user"
)

type userTableModel struct {
	ID          string         `db:"id"`
	DisplayName string         `db:"display_name"`
	Email       sql.NullString `db:"email"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		Email:       m.Email.String,
	}
}
