package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags holds knobs specific to the local node instance (identity, history storage, fake accounts).

func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Custom node name shown in logs",
		},
		cli.StringFlag{
			Name:  "history.backend",
			Usage: "Settlement history storage (bolt|memory)",
			Value: "bolt",
		},
		cli.StringFlag{
			Name:  "history.path",
			Usage: "Settlement history database file (relative paths resolve against the datadir)",
			Value: "history.db",
		},
		cli.IntFlag{
			Name:  "fakenet.accounts",
			Usage: "Number of pre-funded fake accounts on development networks",
			Value: 10,
		},
		cli.StringFlag{
			Name:  "fakenet.balance",
			Usage: "Genesis balance of each fake account, in wei",
			Value: "1000000000000000000000",
		},
	}
}
