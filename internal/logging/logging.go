package logging

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// Logg is the process-wide structured logger, a slog front-end over a
// production zap core.
var Logg *slog.Logger

func init() {
	core := zap.Must(zap.NewProduction())
	Logg = slog.New(zapslog.NewHandler(core.Core()))
}
