package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/brightsciences/lessonpress/cmd/lessonpress/commands"
	apperrors "github.com/brightsciences/lessonpress/internal/errors"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("lessonpress"),
		kong.Description("Renders K-5 science lesson documents from content records."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	if err := ctx.Run(&commands.Global{Logger: slog.Default()}); err != nil {
		slog.Error("command failed", logfields.Error(err))
		os.Exit(exitCode(err))
	}
}

// exitCode maps caller mistakes (bad configuration, invalid records) to
// exit 2 and everything else to exit 1.
func exitCode(err error) int {
	if apperrors.IsCategory(err, apperrors.CategoryConfig) ||
		apperrors.IsCategory(err, apperrors.CategoryValidation) {
		return 2
	}
	return 1
}
