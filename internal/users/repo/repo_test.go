package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/hyphengolang/prelude/testing/is"
	"github.com/joshemcr2/users-api/internal/users"
)

func TestRepo(t *testing.T) {
	is, ctx := is.New(t), context.Background()

	db := New()

	t.Run("create two users and list them in id order", func(t *testing.T) {
		alice, err := db.CreateUser(ctx, "alice")
		is.NoErr(err)                     // create user "alice"
		is.Equal(alice.ID, int64(1))      // first id is 1
		is.Equal(alice.Username, "alice") // username is stored

		bob, err := db.CreateUser(ctx, "bob")
		is.NoErr(err)              // create user "bob"
		is.Equal(bob.ID, int64(2)) // ids are assigned in order

		us, err := db.ListUsers(ctx)
		is.NoErr(err)                          // list users
		is.Equal(us, []users.User{alice, bob}) // both users in id order
	})

	t.Run("get returns the created user", func(t *testing.T) {
		u, err := db.GetUser(ctx, 1)
		is.NoErr(err)                 // get user 1
		is.Equal(u.Username, "alice") // same username as created
	})

	t.Run("reject empty usernames without touching the store", func(t *testing.T) {
		_, err := db.CreateUser(ctx, "")
		is.True(users.IsValidation(err)) // empty username

		_, err = db.UpdateUser(ctx, 1, "  ")
		is.True(users.IsValidation(err)) // blank username

		u, err := db.GetUser(ctx, 1)
		is.NoErr(err)
		is.Equal(u.Username, "alice") // unchanged

		us, err := db.ListUsers(ctx)
		is.NoErr(err)
		is.Equal(len(us), 2) // nothing was created
	})

	t.Run("update overwrites the username", func(t *testing.T) {
		u, err := db.UpdateUser(ctx, 1, "carol")
		is.NoErr(err) // update user 1
		is.Equal(u, users.User{ID: 1, Username: "carol"})

		got, err := db.GetUser(ctx, 1)
		is.NoErr(err)
		is.Equal(got.Username, "carol") // persisted
	})

	t.Run("missing ids are not found", func(t *testing.T) {
		_, err := db.GetUser(ctx, 999)
		is.True(errors.Is(err, users.ErrNotFound)) // get

		_, err = db.UpdateUser(ctx, 999, "dave")
		is.True(errors.Is(err, users.ErrNotFound)) // update

		_, err = db.UpdateUser(ctx, 999, "")
		is.True(errors.Is(err, users.ErrNotFound)) // not found wins over validation

		_, err = db.DeleteUser(ctx, 999)
		is.True(errors.Is(err, users.ErrNotFound)) // delete
	})

	t.Run("delete twice reports not found the second time", func(t *testing.T) {
		u, err := db.DeleteUser(ctx, 2)
		is.NoErr(err)                                   // delete user 2
		is.Equal(u, users.User{ID: 2, Username: "bob"}) // last known state

		_, err = db.DeleteUser(ctx, 2)
		is.True(errors.Is(err, users.ErrNotFound)) // already gone

		us, err := db.ListUsers(ctx)
		is.NoErr(err)
		is.Equal(len(us), 1) // one user left
	})

	t.Run("ids are never reused", func(t *testing.T) {
		u, err := db.CreateUser(ctx, "erin")
		is.NoErr(err)
		is.Equal(u.ID, int64(3)) // next id after the deleted one
	})
}

func TestListEmpty(t *testing.T) {
	is := is.New(t)

	us, err := New().ListUsers(context.Background())
	is.NoErr(err)
	is.True(us != nil) // empty slice, not nil
	is.Equal(len(us), 0)
}
