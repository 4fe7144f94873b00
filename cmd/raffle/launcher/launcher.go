package launcher

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common/mclock"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-raffle/flags"
)

// gitCommit is set at build time through -ldflags.
var gitCommit = ""

var app = flags.NewApp(gitCommit, "a periodic raffle settled by verifiable randomness")

func init() {
	app.Action = raffleMain
}

// Launch parses args and runs the node until it is interrupted.
func Launch(args []string) error {
	return app.Run(args)
}

func raffleMain(ctx *cli.Context) error {
	if args := ctx.Args(); len(args) > 0 {
		return cli.NewExitError("invalid command: "+args[0], 1)
	}

	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	le, err := SetupLogging(cfg.Node.Logging, defaultLogOutput)
	if err != nil {
		return err
	}

	node, err := NewNode(cfg, mclock.System{}, le)
	if err != nil {
		return err
	}
	if err := node.Start(); err != nil {
		node.Stop()
		return err
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	sig := <-sigc
	le.WithField("signal", sig.String()).Info("Got interrupt, shutting down...")

	return node.Stop()
}
