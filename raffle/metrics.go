package raffle

import "github.com/ethereum/go-ethereum/metrics"

var (
	entriesMeter       = metrics.NewRegisteredCounter("raffle/entries", nil)
	roundsClosedMeter  = metrics.NewRegisteredCounter("raffle/rounds/closed", nil)
	roundsSettledMeter = metrics.NewRegisteredCounter("raffle/rounds/settled", nil)
	payoutFailedMeter  = metrics.NewRegisteredCounter("raffle/payouts/failed", nil)
	playersGauge       = metrics.NewRegisteredGauge("raffle/players", nil)
)
