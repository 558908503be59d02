package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

// Provider renders printable documents for issued services.
type Provider interface {
	GenerateSlip(ctx context.Context, slip Slip) (io.Reader, error)
}
