package cli

import (
	"fmt"
	"os"

	"catalogapi/internal/db"
	"catalogapi/internal/repositories"
	"catalogapi/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users, categories and products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := loadSeed(file)
			if err != nil {
				return err
			}

			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.env.DBAutoMigrate {
				if _, err := rt.migrate(cmd.Context()); err != nil {
					return err
				}
			}

			conn := repositories.NewConn(rt.db, db.Dialect(rt.env.DBDriver))
			s := seed.Seeder{
				Users:      repositories.UserRepository{Conn: conn},
				Categories: repositories.CategoryRepository{Conn: conn},
				Products:   repositories.ProductRepository{Conn: conn},
				Log:        rt.log,
			}
			rep, err := s.Run(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users: %d created, %d skipped\n", rep.UsersCreated, rep.UsersSkipped)
			fmt.Fprintf(cmd.OutOrStdout(), "categories: %d created, %d skipped\n", rep.CategoriesCreated, rep.CategoriesSkipped)
			fmt.Fprintf(cmd.OutOrStdout(), "products: %d created, %d skipped\n", rep.ProductsCreated, rep.ProductsSkipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file (defaults to the built-in seed)")
	return cmd
}

func loadSeed(path string) (seed.File, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return seed.File{}, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return seed.Load(f)
}
