package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/chatech/widget-api/internal/model"
)

// GeneratePrompt composes a tenant system prompt embedding the in-stock
// list, the out-of-stock list and the tenant's static info fields.
func GeneratePrompt(t *model.Tenant, products []Product, now time.Time) string {
	var inStock []string
	var outOfStock []string
	for _, p := range products {
		if p.InStock {
			price := p.Price
			if price == "" {
				price = "Consultar"
			}
			inStock = append(inStock, fmt.Sprintf("- %s: %s", p.Name, price))
		} else {
			outOfStock = append(outOfStock, p.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Eres el asistente virtual de %s.\n\n", t.Name)
	fmt.Fprintf(&b, "PRODUCTOS DISPONIBLES:\n%s\n", strings.Join(inStock, "\n"))
	if len(outOfStock) > 0 {
		fmt.Fprintf(&b, "\nSIN STOCK: %s\n", strings.Join(outOfStock, ", "))
	}
	b.WriteString("\nINFO:\n")
	fmt.Fprintf(&b, "- Horarios: %s\n", orDefault(t.Hours, "Consultar"))
	fmt.Fprintf(&b, "- Envíos: %s\n", orDefault(t.Shipping, "Consultar"))
	fmt.Fprintf(&b, "- Pagos: %s\n", orDefault(t.Payments, "Mercado Pago, tarjetas, transferencia"))
	fmt.Fprintf(&b, "- Cambios: %s\n", orDefault(t.Returns, "30 días"))
	b.WriteString("\nResponde en español argentino, sé amable. No inventes productos.\n")
	fmt.Fprintf(&b, "Actualizado: %s", now.Format("02/01/2006 15:04"))

	return b.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
