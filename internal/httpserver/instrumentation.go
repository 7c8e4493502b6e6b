package httpserver

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/ema-helpline/internal/httpserver"

var logger = otelslog.NewLogger(scopeName)
