// storectl tareas de administración sobre el almacén de la tienda.
//
// Uso:
//
//	storectl seed-catalog
//	storectl import-catalog productos.csv --charset latin1
//	storectl create-admin --email admin@ferreteria.pe --password ******
//
// Lee la misma configuración que la API (KV_DRIVER, DATABASE_URL, REDIS_URL...).
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/ferreteria-api/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
