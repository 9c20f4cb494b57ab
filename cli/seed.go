package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/auth"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/config"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/logger"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML layout accepted by seed and serve --fixtures.
type Fixtures struct {
	Users    []UserFixture    `yaml:"users"`
	Products []ProductFixture `yaml:"products"`
}

type UserFixture struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Phone    string `yaml:"phone"`
	Address  string `yaml:"address"`
	Admin    bool   `yaml:"admin"`
}

type ProductFixture struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	// Price is a decimal string so YAML never rounds it through a float.
	Price    string `yaml:"price"`
	Quantity int    `yaml:"quantity"`
}

type SeedResult struct {
	Users    int
	Products int
	Skipped  int
}

func LoadFixtures(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return f, nil
}

// Seed inserts fixture users and products. Records that already exist are
// skipped, so seeding twice is harmless.
func Seed(ctx context.Context, s store.Store, f Fixtures) (SeedResult, error) {
	var res SeedResult

	for _, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" {
			return res, fmt.Errorf("user %q: email and password are required", u.Name)
		}
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return res, err
		}
		role := models.RoleCustomer
		if u.Admin {
			role = models.RoleAdmin
		}
		_, err = s.CreateUser(ctx, models.User{
			ID:       u.ID,
			Name:     u.Name,
			Email:    strings.ToLower(strings.TrimSpace(u.Email)),
			Password: hash,
			Phone:    u.Phone,
			Address:  u.Address,
			Role:     role,
		})
		switch {
		case errors.Is(err, store.ErrDuplicate):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("create user %s: %w", u.Email, err)
		default:
			res.Users++
		}
	}

	for _, p := range f.Products {
		price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
		if err != nil {
			return res, fmt.Errorf("product %q: invalid price %q", p.Name, p.Price)
		}
		_, err = s.CreateProduct(ctx, models.Product{
			ID:          p.ID,
			Name:        p.Name,
			Slug:        p.Slug,
			Description: p.Description,
			Price:       price,
			Quantity:    p.Quantity,
		})
		switch {
		case errors.Is(err, store.ErrDuplicate):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("create product %s: %w", p.Name, err)
		default:
			res.Products++
		}
	}
	return res, nil
}

func newSeedCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and products from a YAML fixtures file",
		Long: `Load users and products into the configured store.

The memory store lives only as long as one process; use serve --fixtures for it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Driver == "memory" {
				return errors.New("seed needs a persistent store; use serve --fixtures with the memory store")
			}
			f, err := LoadFixtures(file)
			if err != nil {
				return err
			}

			log := logger.Discard()
			s, err := store.Open(cmd.Context(), store.Config{
				Driver:        cfg.Store.Driver,
				MongoURI:      cfg.Store.MongoURI,
				MongoDatabase: cfg.Store.MongoDatabase,
				PostgresDSN:   cfg.Store.PostgresDSN,
				Timeout:       cfg.Store.Timeout,
			}, log)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			res, err := Seed(cmd.Context(), s, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d products (%d already present)\n", res.Users, res.Products, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "fixtures.yaml", "Fixtures file")
	return cmd
}
