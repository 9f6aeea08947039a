// Package bootstrap holds one-time provisioning steps run at deployment.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

type guest struct {
	username  string
	password  string
	email     string
	firstName string
	lastName  string
	profile   models.Profile
}

var guests = []guest{
	{
		username:  "andrey",
		password:  "asdasd",
		email:     "andrey@customer.de",
		firstName: "Andrey",
		lastName:  "Customerguest",
		profile:   models.Profile{Type: models.TypeCustomer},
	},
	{
		username:  "kevin",
		password:  "asdasd",
		email:     "kevin@business.de",
		firstName: "Kevin",
		lastName:  "Businessguest",
		profile: models.Profile{
			Type:         models.TypeBusiness,
			Tel:          "49123456789",
			WorkingHours: "9-17",
			Description:  "Test Business User Developer",
			Location:     "Testlocation",
		},
	},
}

// EnsureGuestAccounts recreates the demo customer and business accounts.
// Existing guest users are dropped first so every deployment starts from
// the same known state; running it twice is safe.
func EnsureGuestAccounts(ctx context.Context, users repository.UserRepo, profiles repository.ProfileRepo) error {
	for _, g := range guests {
		if err := users.DeleteUserByUsername(ctx, g.username); err != nil {
			return fmt.Errorf("delete guest %s: %w", g.username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(g.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash guest password: %w", err)
		}

		userID, err := users.CreateUser(ctx, &models.User{
			Username:     g.username,
			Email:        g.email,
			FirstName:    g.firstName,
			LastName:     g.lastName,
			PasswordHash: string(hash),
		})
		if err != nil {
			return fmt.Errorf("create guest %s: %w", g.username, err)
		}

		p := g.profile
		p.UserID = userID
		p.Email = g.email
		if _, err := profiles.CreateProfile(ctx, &p); err != nil {
			return fmt.Errorf("create guest profile %s: %w", g.username, err)
		}
	}

	return nil
}
