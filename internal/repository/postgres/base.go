package postgres

import "github.com/jmoiron/sqlx"

// BaseRepository holds the shared connection pool; every concrete
// repository embeds it.
type BaseRepository struct {
	db *sqlx.DB
}

func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}
