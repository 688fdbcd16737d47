// Command seed-users populates the database with fixture accounts.
// Seeding is idempotent: existing users (matched by email) are left
// untouched, so it is safe to run repeatedly against a live database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/properposts/properposts/internal/auth"
	"github.com/properposts/properposts/internal/model"
	"github.com/properposts/properposts/internal/repository"
)

type fixtureUser struct {
	FullName string
	Email    string
	Password string
}

var fixtureUsers = []fixtureUser{
	{FullName: "Alice Wonderland", Email: "alice@example.com", Password: "wonderland"},
	{FullName: "Willy Wonka", Email: "ww@example.com", Password: "chocolate"},
}

func main() {
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	for _, fixture := range fixtureUsers {
		created, err := ensureUser(ctx, repo, fixture)
		if err != nil {
			fmt.Fprintln(os.Stderr, "seed", fixture.Email+":", err)
			os.Exit(1)
		}
		if created {
			fmt.Println("created", fixture.Email)
		} else {
			fmt.Println("exists", fixture.Email)
		}
	}
}

// ensureUser creates the fixture user unless an account with the same
// email already exists. Returns true when a user was created.
func ensureUser(ctx context.Context, repo *repository.Repository, fixture fixtureUser) (bool, error) {
	_, err := repo.GetUserByEmail(ctx, fixture.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	digest, err := auth.HashPassword(fixture.Password)
	if err != nil {
		return false, err
	}

	user := &model.User{
		ID:        uuid.New().String(),
		FullName:  fixture.FullName,
		Email:     fixture.Email,
		Password:  digest,
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		// A concurrent seeder may have won the race; that still
		// counts as the user existing.
		if errors.Is(err, repository.ErrEmailExists) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
