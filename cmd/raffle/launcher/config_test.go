package launcher

import (
	"io/ioutil"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-raffle/flags"
	"github.com/rony4d/go-raffle/integration"
	"github.com/rony4d/go-raffle/raffle"
)

// runConfigFromArgs runs MakeAllConfigs with a synthetic CLI context.
func runConfigFromArgs(t *testing.T, args ...string) (Config, error) {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = flags.AllFlags()

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"raffle"}, args...)))
	return got, cfgErr
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	datadir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			args: nil,
			want: func(t *testing.T, cfg Config) {
				require := require.New(t)
				require.Equal("go-raffle", cfg.Node.Name)
				require.Equal("localhost", cfg.Node.Network)
				require.False(cfg.Node.RPC.HTTPEnabled)
				require.Equal([]string{"raffle"}, cfg.Node.RPC.HTTPAPI)
				require.True(cfg.Keeper.Enabled)
				require.Equal("1s", cfg.Keeper.Period)
				require.Equal("bolt", cfg.History.Backend)
				require.Equal(10, cfg.FakeNet.Accounts)
			},
		},
		{
			name: "datadir and identity",
			args: []string{"--identity", "ugo-node"},
			want: func(t *testing.T, cfg Config) {
				require := require.New(t)
				require.Equal(datadir, cfg.Node.DataDir)
				require.Equal("ugo-node", cfg.Node.Name)
			},
		},
		{
			name: "rpc and logging",
			args: []string{"--http", "--http.port", "0", "--http.api", "raffle, dev", "--log.format", "json", "--log.verbosity", "5"},
			want: func(t *testing.T, cfg Config) {
				require := require.New(t)
				require.True(cfg.Node.RPC.HTTPEnabled)
				require.Equal(0, cfg.Node.RPC.HTTPPort)
				require.Equal([]string{"raffle", "dev"}, cfg.Node.RPC.HTTPAPI)
				require.Equal("json", cfg.Node.Logging.Format)
				require.Equal(5, cfg.Node.Logging.Verbosity)
			},
		},
		{
			name: "raffle parameters",
			args: []string{"--raffle.fee", "0x2386f26fc10000", "--raffle.interval", "45s", "--raffle.confirmations", "7", "--raffle.callbackgas", "250000"},
			want: func(t *testing.T, cfg Config) {
				require := require.New(t)
				rc, _, err := cfg.MakeRaffleConfig()
				require.NoError(err)
				require.Equal(big.NewInt(1e16), rc.EntranceFee)
				require.Equal(45*time.Second, rc.Interval)
				require.Equal(uint16(7), rc.RequestConfirmations)
				require.Equal(uint32(250000), rc.CallbackGasLimit)
			},
		},
		{
			name: "keeper and vrf",
			args: []string{"--keeper.disable", "--keeper.period", "250ms", "--vrf.delay", "2s", "--vrf.attempts", "3"},
			want: func(t *testing.T, cfg Config) {
				require := require.New(t)
				require.False(cfg.Keeper.Enabled)
				kc, err := cfg.Keeper.keeperConfig()
				require.NoError(err)
				require.Equal(250*time.Millisecond, kc.Period)
				vc, err := cfg.VRF.responderConfig()
				require.NoError(err)
				require.Equal(2*time.Second, vc.Delay)
				require.Equal(5*time.Second, vc.RetryDelay)
				require.Equal(3, vc.MaxAttempts)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, append([]string{"--datadir", datadir}, test.args...)...)
			require.NoError(t, err)
			test.want(t, cfg)
		})
	}
}

func TestMakeAllConfigs_invalid(t *testing.T) {
	datadir := t.TempDir()

	for _, args := range [][]string{
		{"--network", "mainnet"},
		{"--raffle.fee", "ten"},
		{"--raffle.gaslane", "0x1234"},
		{"--history.backend", "leveldb"},
		{"--log.format", "xml"},
		{"--http.api", "raffle,admin"},
		{"--fakenet.accounts", "0"},
		{"--raffle.confirmations", "65736"},
		{"--raffle.callbackgas", "4294967296"},
	} {
		_, err := runConfigFromArgs(t, append([]string{"--datadir", datadir}, args...)...)
		require.Error(t, err, "args %v", args)
	}
}

func TestMakeAllConfigs_configFile(t *testing.T) {
	require := require.New(t)
	datadir := t.TempDir()

	file := writeConfigFile(t, `
[Node]
Name = "from-file"
Network = "sepolia"

[Raffle]
EntranceFee = "20000000000000000"
Interval = "1m"

[History]
Backend = "memory"
`)

	cfg, err := runConfigFromArgs(t, "--datadir", datadir, "--config", file, "--raffle.interval", "90s")
	require.NoError(err)
	require.Equal("from-file", cfg.Node.Name)
	require.Equal("memory", cfg.History.Backend)

	rc, preset, err := cfg.MakeRaffleConfig()
	require.NoError(err)
	require.Equal(integration.SepoliaPreset().ChainID, preset.ChainID)
	// file over preset
	require.Equal(big.NewInt(2e16), rc.EntranceFee)
	require.Equal(integration.SepoliaPreset().GasLane, rc.GasLane)
	// flag over file
	require.Equal(90*time.Second, rc.Interval)
}

func TestMakeAllConfigs_unknownKey(t *testing.T) {
	file := writeConfigFile(t, `
[Node]
Nmae = "typo"
`)
	_, err := runConfigFromArgs(t, "--datadir", t.TempDir(), "--config", file)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Node.Nmae")
}

func TestMakeRaffleConfig_presets(t *testing.T) {
	require := require.New(t)

	cfg := defaultConfig()
	rc, preset, err := cfg.MakeRaffleConfig()
	require.NoError(err)
	require.True(preset.Development)
	require.Equal(raffle.DefaultConfig().EntranceFee, rc.EntranceFee)
	require.Equal(integration.LocalhostPreset().GasLane, rc.GasLane)

	cfg.Node.Network = "goerli"
	cfg.Raffle.GasLane = common.HexToHash("0x01").Hex()
	cfg.Raffle.SubscriptionID = 42
	rc, preset, err = cfg.MakeRaffleConfig()
	require.NoError(err)
	require.False(preset.Development)
	require.Equal(common.HexToHash("0x01"), rc.GasLane)
	require.Equal(uint64(42), rc.SubscriptionID)
}

func TestMakeRaffleConfig_rejectsOverflow(t *testing.T) {
	require := require.New(t)

	cfg := defaultConfig()
	cfg.Raffle.RequestConfirmations = 65736
	_, _, err := cfg.MakeRaffleConfig()
	require.Error(err)
	require.Contains(err.Error(), "request confirmations")

	cfg = defaultConfig()
	cfg.Raffle.CallbackGasLimit = 1 << 32
	_, _, err = cfg.MakeRaffleConfig()
	require.Error(err)
	require.Contains(err.Error(), "callback gas limit")

	cfg = defaultConfig()
	cfg.Raffle.RequestConfirmations = 65535
	rc, _, err := cfg.MakeRaffleConfig()
	require.NoError(err)
	require.Equal(uint16(65535), rc.RequestConfirmations)
}
