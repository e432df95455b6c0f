// Package dbtest starts a throwaway PostgreSQL container for integration tests.
package dbtest

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	dbName = "users-test"
	pgUser = "users-test"
	pgPass = "password123"
)

// Postgres is a running database container.
type Postgres struct {
	URL string

	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// Purge removes the container.
func (p *Postgres) Purge() error {
	return p.pool.Purge(p.resource)
}

// NewPostgres pulls and runs a postgres image and waits until it accepts connections.
// It returns an error when Docker is not reachable so callers can skip.
func NewPostgres() (*Postgres, error) {
	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not construct pool: %w", err)
	}

	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to docker: %w", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_PASSWORD=" + pgPass,
			"POSTGRES_USER=" + pgUser,
			"POSTGRES_DB=" + dbName,
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("could not start resource: %w", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	url := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPass, hostAndPort, dbName)

	log.Println("Connecting to database on url: ", url)

	// Tell docker to hard kill the container in 120 seconds
	if err := resource.Expire(120); err != nil {
		_ = pool.Purge(resource)
		return nil, fmt.Errorf("could not set resource expiration time: %w", err)
	}

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	pool.MaxWait = 120 * time.Second
	if err := pool.Retry(func() error {
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return err
		}
		defer conn.Close()
		return conn.Ping()
	}); err != nil {
		_ = pool.Purge(resource)
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}

	return &Postgres{URL: url, pool: pool, resource: resource}, nil
}
