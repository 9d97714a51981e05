package progress

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// Auto picks a terminal bar when out is a terminal and sampled log lines
// otherwise.
func Auto(out *os.File, logger *slog.Logger) Reporter {
	if out != nil && (isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())) {
		return NewBar(out)
	}
	return NewLog(logger)
}
