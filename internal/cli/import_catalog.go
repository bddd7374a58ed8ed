package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/usecase"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kvrepo"
)

// Columnas del CSV de catálogo, separadas por ';'.
var catalogColumns = []string{"name", "description", "price", "unit", "category", "stock", "imageUrl"}

// NewImportCatalogCommand importa productos desde un CSV.
func NewImportCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	var charset string
	cmd := &cobra.Command{
		Use:   "import-catalog <archivo.csv>",
		Short: "Crea productos desde un CSV name;description;price;unit;category;stock;imageUrl",
		Long: `Crea un producto por fila. La cabecera es opcional.
Los archivos exportados desde Excel suelen venir en ISO-8859-1: usar --charset latin1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := ParseCatalogCSV(f, charset)
			if err != nil {
				return err
			}
			return rootOpts.withStore(cmd.Context(), func(store kv.Store) error {
				uc := usecase.NewProductUseCase(kvrepo.NewProductRepository(store))
				for i, row := range rows {
					if _, err := uc.Create(cmd.Context(), row); err != nil {
						return fmt.Errorf("producto %q (fila %d): %w; %d creados antes del error", row.Name, i+1, err, i)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "importados %d productos\n", len(rows))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&charset, "charset", "utf-8", "codificación del archivo (utf-8|latin1)")
	return cmd
}

// ParseCatalogCSV lee el CSV completo antes de crear nada: una fila inválida aborta la importación.
// El precio admite coma decimal ("12,50").
func ParseCatalogCSV(r io.Reader, charset string) ([]dto.CreateProductRequest, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("charset no soportado %q", charset)
	}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var out []dto.CreateProductRequest
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")), "name") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row, err := parseCatalogRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func parseCatalogRow(rec []string) (dto.CreateProductRequest, error) {
	if len(rec) < 4 {
		return dto.CreateProductRequest{}, fmt.Errorf("se esperaban al menos 4 columnas (%s), hay %d",
			strings.Join(catalogColumns[:4], ";"), len(rec))
	}
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	price, err := decimal.NewFromString(strings.ReplaceAll(field(2), ",", "."))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("price %q inválido", field(2))
	}
	var stock int
	if s := field(5); s != "" {
		stock, err = strconv.Atoi(s)
		if err != nil {
			return dto.CreateProductRequest{}, fmt.Errorf("stock %q inválido", s)
		}
	}
	return dto.CreateProductRequest{
		Name:        field(0),
		Description: field(1),
		Price:       &price,
		Unit:        field(3),
		Category:    field(4),
		Stock:       dto.FlexInt(stock),
		ImageURL:    field(6),
	}, nil
}
