package providers

import (
	"github.com/smallbiznis/sevadesk/internal/providers/pdf"
	"github.com/smallbiznis/sevadesk/internal/providers/slack"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	pdf.Module,
	slack.Module,
)
