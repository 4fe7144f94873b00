package integration

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-raffle/raffle"
)

// TestPresetsAreValid verifies every preset produces a raffle config that
// passes validation once applied to the defaults.
func TestPresetsAreValid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			preset, err := GetPresetByName(name)
			require.NoError(err)
			require.Equal(name, preset.Name)
			require.NotZero(preset.ChainID)
			require.NotEqual(common.Hash{}, preset.GasLane)

			cfg := raffle.DefaultConfig()
			ApplyPreset(&cfg, preset)
			require.NoError(cfg.Validate())
		})
	}
}

func TestDevelopmentPresets(t *testing.T) {
	require := require.New(t)

	for _, tt := range []struct {
		name string
		dev  bool
	}{
		{"localhost", true},
		{"hardhat", true},
		{"sepolia", false},
		{"goerli", false},
	} {
		p, err := GetPresetByName(tt.name)
		require.NoError(err)
		require.Equal(tt.dev, p.Development, tt.name)
	}
}

func TestGetPresetByName_unknown(t *testing.T) {
	require := require.New(t)

	_, err := GetPresetByName("mainnet")
	require.Error(err)
	require.Contains(err.Error(), `unknown network: "mainnet"`)
	require.Contains(err.Error(), "goerli, hardhat, localhost, sepolia")

	_, err = GetPresetByName("")
	require.Error(err)
}

func TestGetPresetByChainID(t *testing.T) {
	require := require.New(t)

	p, err := GetPresetByChainID(LocalhostChainID)
	require.NoError(err)
	require.Equal("localhost", p.Name)

	p, err = GetPresetByChainID(SepoliaChainID)
	require.NoError(err)
	require.Equal("sepolia", p.Name)

	p, err = GetPresetByChainID(GoerliChainID)
	require.NoError(err)
	require.Equal(common.HexToHash("0x79d3d8832d904592c0bf9818b621522c988bb8b0c05cdc3b15aea1b6e8db0c15"), p.GasLane)

	_, err = GetPresetByChainID(250)
	require.Error(err)
}

// TestApplyPreset_keepsUnsetFields verifies zero preset fields do not clobber
// the target.
func TestApplyPreset_keepsUnsetFields(t *testing.T) {
	require := require.New(t)

	cfg := raffle.DefaultConfig()
	cfg.SubscriptionID = 42
	cfg.Interval = time.Hour

	ApplyPreset(&cfg, PresetConfig{EntranceFee: big.NewInt(5)})
	require.Equal(big.NewInt(5), cfg.EntranceFee)
	require.Equal(time.Hour, cfg.Interval)
	require.Equal(uint64(42), cfg.SubscriptionID)
	require.Equal(raffle.DefaultCallbackGasLimit, cfg.CallbackGasLimit)

	// The preset's fee is copied, not shared.
	preset := SepoliaPreset()
	ApplyPreset(&cfg, preset)
	preset.EntranceFee.SetInt64(1)
	require.Equal(big.NewInt(1e16), cfg.EntranceFee)
}
