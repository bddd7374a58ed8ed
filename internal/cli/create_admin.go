package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/ferreteria-api/internal/application/auth"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kvrepo"
)

type createAdminOptions struct {
	email    string
	password string
	name     string
}

// NewCreateAdminCommand crea una cuenta administradora.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &createAdminOptions{}
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un usuario con rol admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.email == "" || opts.password == "" {
				return errors.New("--email y --password son obligatorios")
			}
			if opts.name == "" {
				opts.name = opts.email
			}
			return rootOpts.withStore(cmd.Context(), func(store kv.Store) error {
				// Sin emisión de tokens: el JWTConfig no se usa aquí.
				uc := auth.NewAuthUseCase(kvrepo.NewUserRepository(store), auth.JWTConfig{})
				user, err := uc.CreateAdmin(cmd.Context(), opts.email, opts.password, opts.name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin creado: %s (%s)\n", user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "email del administrador")
	cmd.Flags().StringVar(&opts.password, "password", "", "contraseña (mínimo 6 caracteres)")
	cmd.Flags().StringVar(&opts.name, "name", "", "nombre visible")
	return cmd
}
