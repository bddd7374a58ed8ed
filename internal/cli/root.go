// Package cli comandos de administración de storectl.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/storage"
	"github.com/jhoicas/ferreteria-api/pkg/config"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

// StoreOpener abre el almacén sobre el que operan los comandos. El comando lo cierra al terminar.
type StoreOpener func(ctx context.Context, log *logger.Logger) (kv.Store, error)

// RootOptions flags globales y dependencias compartidas por los subcomandos.
type RootOptions struct {
	Verbose   bool
	OpenStore StoreOpener
	log       *logger.Logger
}

// OpenConfiguredStore carga la configuración del entorno y abre el store de KV_DRIVER.
func OpenConfiguredStore(ctx context.Context, log *logger.Logger) (kv.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, cfg, log)
}

// NewRootCommand crea el comando raíz. Con open nil se usa OpenConfiguredStore.
func NewRootCommand(open StoreOpener) *cobra.Command {
	if open == nil {
		open = OpenConfiguredStore
	}
	opts := &RootOptions{OpenStore: open}

	cmd := &cobra.Command{
		Use:   "storectl",
		Short: "Administración de la ferretería",
		Long:  "Tareas de administración sobre el almacén de la tienda: catálogo de ejemplo, importación CSV y cuentas admin.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			opts.log = logger.New(logger.Config{Env: "development", Level: level, Output: cmd.ErrOrStderr()})
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true, // main imprime el error
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "salida detallada")

	cmd.AddCommand(NewSeedCatalogCommand(opts))
	cmd.AddCommand(NewImportCatalogCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))

	return cmd
}

// withStore abre el store, ejecuta fn y lo cierra.
func (o *RootOptions) withStore(ctx context.Context, fn func(store kv.Store) error) error {
	log := o.log
	if log == nil {
		log = logger.Nop()
	}
	store, err := o.OpenStore(ctx, log)
	if err != nil {
		return fmt.Errorf("abrir almacén: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("cerrar almacén")
		}
	}()
	return fn(store)
}
