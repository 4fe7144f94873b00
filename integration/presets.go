// Package integration provides per-network raffle presets. A preset bundles
// the parameters a deployment on a given network is created with (entrance
// fee, interval, randomness gas lane, callback gas) so operators can select a
// network by name instead of setting each value by hand.
//
// Usage:
//
//	preset, err := integration.GetPresetByName("localhost")
//	cfg := raffle.DefaultConfig()
//	integration.ApplyPreset(&cfg, preset)
//
// Only development presets can be run by the launcher: they are served by the
// in-process mock coordinator and fake accounts. Live network presets carry
// the real parameters for reference and for tooling that talks to those
// networks.
package integration

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-raffle/raffle"
)

// Chain IDs of the supported networks.
const (
	LocalhostChainID uint64 = 31337
	SepoliaChainID   uint64 = 11155111
	GoerliChainID    uint64 = 5
)

// PresetConfig captures what differs between networks. Zero values mean
// "keep the target's value" when applied.
type PresetConfig struct {
	Name        string // network name used on the command line
	ChainID     uint64
	Development bool // served by the mock coordinator and fake accounts

	EntranceFee      *big.Int      // wei
	Interval         time.Duration // minimum round length
	GasLane          common.Hash   // randomness key hash
	CallbackGasLimit uint32
	SubscriptionID   uint64 // zero on development networks: created at startup
}

// LocalhostPreset returns the development network preset: a 30 second round,
// 0.01 ether entrance fee and the sepolia gas lane, which the mock coordinator
// accepts but ignores.
func LocalhostPreset() PresetConfig {
	return PresetConfig{
		Name:             "localhost",
		ChainID:          LocalhostChainID,
		Development:      true,
		EntranceFee:      big.NewInt(1e16),
		Interval:         30 * time.Second,
		GasLane:          common.HexToHash("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"),
		CallbackGasLimit: 500000,
	}
}

// HardhatPreset is LocalhostPreset under the name development tooling uses for
// its ephemeral network.
func HardhatPreset() PresetConfig {
	cfg := LocalhostPreset()
	cfg.Name = "hardhat"
	return cfg
}

// SepoliaPreset returns the sepolia testnet parameters.
func SepoliaPreset() PresetConfig {
	return PresetConfig{
		Name:             "sepolia",
		ChainID:          SepoliaChainID,
		EntranceFee:      big.NewInt(1e16),
		Interval:         30 * time.Second,
		GasLane:          common.HexToHash("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"),
		CallbackGasLimit: 500000,
	}
}

// GoerliPreset returns the goerli testnet parameters.
func GoerliPreset() PresetConfig {
	return PresetConfig{
		Name:             "goerli",
		ChainID:          GoerliChainID,
		EntranceFee:      big.NewInt(1e16),
		Interval:         30 * time.Second,
		GasLane:          common.HexToHash("0x79d3d8832d904592c0bf9818b621522c988bb8b0c05cdc3b15aea1b6e8db0c15"),
		CallbackGasLimit: 500000,
	}
}

var presets = map[string]func() PresetConfig{
	"localhost": LocalhostPreset,
	"hardhat":   HardhatPreset,
	"sepolia":   SepoliaPreset,
	"goerli":    GoerliPreset,
}

// PresetNames lists the known network names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPresetByName looks up a preset by network name.
//
// Example:
//
//	preset, err := integration.GetPresetByName("sepolia")
//	if err != nil {
//	    return err
//	}
func GetPresetByName(name string) (PresetConfig, error) {
	mk, ok := presets[name]
	if !ok {
		return PresetConfig{}, fmt.Errorf("unknown network: %q (valid: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return mk(), nil
}

// GetPresetByChainID looks up a preset by chain ID. hardhat shares its ID
// with localhost and is never returned.
func GetPresetByChainID(id uint64) (PresetConfig, error) {
	for _, name := range PresetNames() {
		if p := presets[name](); p.ChainID == id && p.Name != "hardhat" {
			return p, nil
		}
	}
	return PresetConfig{}, fmt.Errorf("unknown chain ID: %d", id)
}

// ApplyPreset merges the preset's non-zero parameters into target.
//
// Example:
//
//	cfg := raffle.DefaultConfig()
//	integration.ApplyPreset(&cfg, integration.SepoliaPreset())
func ApplyPreset(target *raffle.Config, preset PresetConfig) {
	if preset.EntranceFee != nil {
		target.EntranceFee = new(big.Int).Set(preset.EntranceFee)
	}
	if preset.Interval > 0 {
		target.Interval = preset.Interval
	}
	if preset.GasLane != (common.Hash{}) {
		target.GasLane = preset.GasLane
	}
	if preset.CallbackGasLimit > 0 {
		target.CallbackGasLimit = preset.CallbackGasLimit
	}
	if preset.SubscriptionID > 0 {
		target.SubscriptionID = preset.SubscriptionID
	}
}
