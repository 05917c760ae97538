// Package seed provisions the rows an empty database needs before the portal
// is usable.
package seed

import (
	"context"
	"fmt"

	"crewport/internal/store"
	"crewport/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin upserts one admin account. Re-running with the same username
// resets the password, which doubles as the password recovery path.
func SeedAdmin(ctx context.Context, admins store.AdminStore, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("admin username and password are both required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &types.Admin{
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := admins.CreateAdmin(ctx, admin); err != nil {
		return fmt.Errorf("failed to upsert admin %s: %w", username, err)
	}

	fmt.Printf("Admin account ready: %s (id: %d)\n", username, admin.ID)
	return nil
}
