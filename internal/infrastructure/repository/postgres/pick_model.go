package postgres

import (
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
)

type pickTableModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	GameID    string    `db:"game_id"`
	Side      string    `db:"side"`
	CreatedAt time.Time `db:"created_at"`
}

func (m pickTableModel) toDomain() pick.Pick {
	return pick.Pick{
		ID:        m.ID,
		UserID:    m.UserID,
		GameID:    m.GameID,
		Side:      game.Side(m.Side),
		CreatedAt: m.CreatedAt,
	}
}
