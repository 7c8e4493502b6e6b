package speechtotext

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/ema-helpline/core/speechtotext"

var logger = otelslog.NewLogger(scopeName)
