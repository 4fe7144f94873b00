package flags

import (
	"time"

	"gopkg.in/urfave/cli.v1"
)

// RaffleFlags override the parameters of the selected network preset.

func RaffleFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "raffle.fee",
			Usage: "Entrance fee in wei",
		},
		cli.DurationFlag{
			Name:  "raffle.interval",
			Usage: "Minimum time a round stays open",
		},
		cli.Uint64Flag{
			Name:  "raffle.confirmations",
			Usage: "Confirmations the randomness provider waits for",
		},
		cli.Uint64Flag{
			Name:  "raffle.callbackgas",
			Usage: "Gas limit for the randomness callback",
		},
		cli.StringFlag{
			Name:  "raffle.gaslane",
			Usage: "Randomness key hash (0x-prefixed, 32 bytes)",
		},
		cli.Uint64Flag{
			Name:  "raffle.subscription",
			Usage: "Randomness subscription ID (created at startup on development networks when zero)",
		},
	}
}

// KeeperFlags tune the upkeep loop.
func KeeperFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "keeper.disable",
			Usage: "Do not close rounds automatically (use dev_performUpkeep)",
		},
		cli.DurationFlag{
			Name:  "keeper.period",
			Usage: "Time between upkeep checks",
			Value: time.Second,
		},
	}
}

// VRFFlags tune the in-process randomness responder of development networks.
func VRFFlags() []cli.Flag {
	return []cli.Flag{
		cli.DurationFlag{
			Name:  "vrf.delay",
			Usage: "Delay before random words are delivered",
			Value: time.Second,
		},
		cli.DurationFlag{
			Name:  "vrf.retry",
			Usage: "Delay between failed deliveries",
			Value: 5 * time.Second,
		},
		cli.IntFlag{
			Name:  "vrf.attempts",
			Usage: "Delivery attempts per request",
			Value: 5,
		},
		cli.StringFlag{
			Name:  "vrf.fund",
			Usage: "Amount the development subscription is funded with",
			Value: "10000000000000000000",
		},
	}
}

// AllFlags is every flag the raffle node accepts.
func AllFlags() []cli.Flag {
	var all []cli.Flag
	all = append(all, CommonFlags()...)
	all = append(all, NodeFlags()...)
	all = append(all, RaffleFlags()...)
	all = append(all, KeeperFlags()...)
	all = append(all, VRFFlags()...)
	return all
}
