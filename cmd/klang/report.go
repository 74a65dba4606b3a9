package main

import (
	"errors"
	"fmt"

	"github.com/muesli/termenv"
	"github.com/reusee/klang/klangconfigs"
	"github.com/reusee/klang/klangvm"
	"github.com/reusee/klang/logs"
)

// Report prints a failure for the user.
type Report func(err error)

func (Module) Report(
	stderr Stderr,
	color klangconfigs.ColorMode,
	logger logs.Logger,
) Report {
	var opts []termenv.OutputOption
	switch color {
	case klangconfigs.ColorAlways:
		opts = append(opts, termenv.WithProfile(termenv.ANSI))
	case klangconfigs.ColorNever:
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	output := termenv.NewOutput(stderr, opts...)

	return func(err error) {
		if err == nil {
			return
		}
		logger.Debug("error", "error", err)

		var klangErr *klangvm.Error
		if !errors.As(err, &klangErr) {
			fmt.Fprintf(output, "%s %v\n",
				output.String("error:").Foreground(termenv.ANSIRed).Bold(),
				err,
			)
			return
		}
		fmt.Fprintf(output, "%s %s\n",
			output.String("["+string(klangErr.Kind)+"]").Foreground(termenv.ANSIRed).Bold(),
			output.String(fmt.Sprintf("%s at line %d: %s", klangErr.File, klangErr.Line, klangErr.Message)),
		)
		// the message already names the cause, keep the diagnostic on one line
		if klangErr.Cause != nil {
			logger.Debug("cause", "kind", klangErr.Kind, "cause", klangErr.Cause)
		}
	}
}
