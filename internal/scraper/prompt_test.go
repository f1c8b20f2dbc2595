package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatech/widget-api/internal/model"
)

func TestGeneratePrompt(t *testing.T) {
	tenant := &model.Tenant{
		Name:     "Acme",
		Hours:    "Lun a Vie 9-18",
		Shipping: "Envíos a todo el país",
	}
	products := []Product{
		{Name: "Remera Azul", Price: "$1.500", InStock: true},
		{Name: "Gorra", Price: "", InStock: true},
		{Name: "Zapatillas Urbanas", Price: "$45.999", InStock: false},
	}
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	prompt := GeneratePrompt(tenant, products, now)

	require.Contains(t, prompt, "Eres el asistente virtual de Acme.")
	require.Contains(t, prompt, "- Remera Azul: $1.500")
	require.Contains(t, prompt, "- Gorra: Consultar")
	require.Contains(t, prompt, "SIN STOCK: Zapatillas Urbanas")
	require.Contains(t, prompt, "- Horarios: Lun a Vie 9-18")
	require.Contains(t, prompt, "- Envíos: Envíos a todo el país")
	require.Contains(t, prompt, "- Pagos: Mercado Pago, tarjetas, transferencia")
	require.Contains(t, prompt, "- Cambios: 30 días")
	require.Contains(t, prompt, "Actualizado: 15/03/2026 14:30")
	require.NotContains(t, prompt, "Zapatillas Urbanas: $45.999")
}

func TestGeneratePromptAllInStock(t *testing.T) {
	tenant := &model.Tenant{Name: "Acme"}
	products := []Product{{Name: "Gorra", Price: "$800", InStock: true}}

	prompt := GeneratePrompt(tenant, products, time.Now())

	require.NotContains(t, prompt, "SIN STOCK")
	require.Contains(t, prompt, "- Horarios: Consultar")
}
