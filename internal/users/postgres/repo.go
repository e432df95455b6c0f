package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joshemcr2/users-api/internal/users"
	"github.com/joshemcr2/users-api/internal/users/repo"
	"github.com/pkg/errors"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type store struct {
	db DBTX
}

func New(conn DBTX) repo.Repo {
	return &store{db: conn}
}

func (s *store) ListUsers(ctx context.Context) ([]users.User, error) {
	rows, err := s.db.Query(ctx, qrySelectMany)
	if err != nil {
		return nil, errors.Wrap(err, "listUsers")
	}
	defer rows.Close()

	res := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, errors.Wrap(err, "listUsers: scan")
		}
		res = append(res, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "listUsers")
	}
	return res, nil
}

func (s *store) GetUser(ctx context.Context, id int64) (users.User, error) {
	return s.queryUser(ctx, "getUser", qrySelectByID, id)
}

func (s *store) CreateUser(ctx context.Context, username string) (users.User, error) {
	if err := users.ValidateUsername(username); err != nil {
		return users.User{}, err
	}

	return s.queryUser(ctx, "createUser", qryInsert, username)
}

func (s *store) UpdateUser(ctx context.Context, id int64, username string) (users.User, error) {
	if err := users.ValidateUsername(username); err != nil {
		// an absent id is reported before a bad username
		if nf := s.exists(ctx, id); nf != nil {
			return users.User{}, nf
		}
		return users.User{}, err
	}

	return s.queryUser(ctx, "updateUser", qryUpdateByID, id, username)
}

func (s *store) DeleteUser(ctx context.Context, id int64) (users.User, error) {
	return s.queryUser(ctx, "deleteUser", qryDeleteByID, id)
}

func (s *store) exists(ctx context.Context, id int64) error {
	var found bool
	if err := s.db.QueryRow(ctx, qryExists, id).Scan(&found); err != nil {
		return errors.Wrap(err, "exists")
	}

	if !found {
		return users.ErrNotFound
	}
	return nil
}

// queryUser runs a statement returning a single (id, username) row.
func (s *store) queryUser(ctx context.Context, op, qry string, args ...any) (users.User, error) {
	var u users.User
	err := s.db.QueryRow(ctx, qry, args...).Scan(&u.ID, &u.Username)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return users.User{}, users.ErrNotFound
	case err != nil:
		return users.User{}, errors.Wrap(err, op)
	}
	return u, nil
}

const (
	qryInsert = `insert into users (username) values ($1) returning id, username`

	qrySelectMany = `select id, username from users order by id`
	qrySelectByID = `select id, username from users where id = $1`
	qryExists     = `select exists (select 1 from users where id = $1)`

	qryUpdateByID = `update users set username = $2 where id = $1 returning id, username`

	qryDeleteByID = `delete from users where id = $1 returning id, username`
)
