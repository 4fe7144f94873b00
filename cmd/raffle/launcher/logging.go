package launcher

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/evalphobia/logrus_sentry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// sentryLevels are forwarded to Sentry when a DSN is configured.
var sentryLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
}

// SetupLogging installs the root handler of the go-ethereum logger used by the
// library packages and returns the logrus entry the launcher logs through.
// Both write to w.
func SetupLogging(cfg LoggingConfig, w io.Writer) (*logrus.Entry, error) {
	format := log.TerminalFormat(cfg.Color)
	if cfg.Format == "json" {
		format = log.JSONFormat()
	}
	glogger := log.NewGlogHandler(log.StreamHandler(w, format))
	glogger.Verbosity(log.Lvl(cfg.Verbosity))

	logger := logrus.New()
	logger.Out = w
	logger.SetLevel(logrusLevel(cfg.Verbosity))
	if cfg.Format == "json" {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{DisableColors: !cfg.Color, FullTimestamp: true}
	}

	if cfg.SentryDSN == "" {
		log.Root().SetHandler(glogger)
		return logrus.NewEntry(logger), nil
	}

	hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, sentryLevels)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up sentry")
	}
	logger.Hooks.Add(hook)

	// Library errors reach Sentry through a silent logrus logger that only
	// carries the hook.
	reporter := logrus.New()
	reporter.Out = ioutil.Discard
	reporter.Hooks.Add(hook)
	log.Root().SetHandler(log.MultiHandler(
		glogger,
		log.LvlFilterHandler(log.LvlError, log.FuncHandler(func(r *log.Record) error {
			reporter.WithFields(recordFields(r.Ctx)).Error(r.Msg)
			return nil
		})),
	))
	return logrus.NewEntry(logger), nil
}

// logrusLevel maps the 0 (crit) to 5 (trace) verbosity scale onto logrus.
func logrusLevel(verbosity int) logrus.Level {
	switch {
	case verbosity <= 0:
		return logrus.FatalLevel
	case verbosity >= 5:
		return logrus.TraceLevel
	}
	return logrus.Level(verbosity + 1)
}

func recordFields(ctx []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields[fmt.Sprint(ctx[i])] = ctx[i+1]
	}
	return fields
}

// defaultLogOutput is where the node logs unless a test redirects it.
var defaultLogOutput io.Writer = os.Stderr
