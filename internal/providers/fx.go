package providers

import (
	"github.com/kaupunki/parking-permits/internal/providers/email"
	"github.com/kaupunki/parking-permits/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
