package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/ferreteria-api/internal/application/usecase"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kvrepo"
)

// NewSeedCatalogCommand reemplaza el catálogo por el de ejemplo.
func NewSeedCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-catalog",
		Short: "Borra todos los productos y carga el catálogo de ejemplo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd.Context(), func(store kv.Store) error {
				uc := usecase.NewProductUseCase(kvrepo.NewProductRepository(store))
				n, err := uc.ResetCatalog(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "catálogo reiniciado: %d productos\n", n)
				return nil
			})
		},
	}
}
