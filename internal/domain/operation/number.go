// Package operation genera los números de operación de las ventas.
package operation

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLength = 6
	timeLayout   = "20060102150405"
)

// Generator produce números de operación OP-<yyyyMMddHHmmss>-<6 alfanuméricos>.
// La unicidad no está garantizada aquí; el ledger la hace cumplir con un índice.
type Generator struct {
	rand io.Reader
}

// NewGenerator usa crypto/rand cuando r es nil.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// Next devuelve un número de operación para el instante dado.
func (g *Generator) Next(now time.Time) (string, error) {
	suffix := make([]byte, suffixLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range suffix {
		n, err := rand.Int(g.rand, max)
		if err != nil {
			return "", fmt.Errorf("operation: sufijo aleatorio: %w", err)
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return fmt.Sprintf("OP-%s-%s", now.UTC().Format(timeLayout), suffix), nil
}
