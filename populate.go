package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/models"
	"github.com/isdelr/cabinet-be/internal/services"
)

const (
	demoUsername = "foo"
	demoPassword = "bar"
)

var demoRecipe = models.RecipeInput{
	ID:           "11007",
	Title:        "Margarita",
	Instructions: "Rub the rim of the glass with the lime slice to make the salt stick to it. Shake the other ingredients with ice, then carefully pour into the glass.",
	Ingredients:  "Tequila, Triple Sec, Lime Juice, Salt",
	ImageURL:     "https://www.thecocktaildb.com/images/media/drink/5noda61589575158.jpg",
	Category:     "Ordinary Drink",
}

// NewPopulateCmd creates the populate subcommand.
func NewPopulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "populate",
		Short: "Seed the database with demo data",
		Long: `Create the demo user foo (password bar) and the Margarita recipe it owns.
Existing rows are left untouched, so the command can be run repeatedly.`,
		RunE: runPopulate,
	}
}

func runPopulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := populate(cmd.Context(), db, auth.NewArgon2idHasher())
	if err != nil {
		return err
	}

	if res.userCreated {
		cmd.Println("Inserted demo user", demoUsername)
	} else {
		cmd.Println("Demo user already present")
	}
	if res.recipeCreated {
		cmd.Println("Inserted demo recipe", demoRecipe.Title)
	} else {
		cmd.Println("Demo recipe already present")
	}
	cmd.Println("Database populated successfully")
	return nil
}

type populateResult struct {
	userCreated   bool
	recipeCreated bool
}

func populate(ctx context.Context, db *sql.DB, hasher auth.PasswordHasher) (populateResult, error) {
	var res populateResult

	users := services.NewUserService(db, hasher)
	switch err := users.Register(ctx, demoUsername, demoPassword); {
	case err == nil:
		res.userCreated = true
	case errors.Is(err, apperr.ErrConflict):
	default:
		return res, oops.Code("SEED_FAILED").With("operation", "seed user").Wrap(err)
	}

	recipes := services.NewRecipeService(db, services.NewEventService(db))
	switch _, err := recipes.CreateRecipe(ctx, demoUsername, demoRecipe); {
	case err == nil:
		res.recipeCreated = true
	case errors.Is(err, apperr.ErrConflict):
	default:
		return res, oops.Code("SEED_FAILED").With("operation", "seed recipe").Wrap(err)
	}

	return res, nil
}
