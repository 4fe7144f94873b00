// This file maps the CLI context and config file onto the Config struct.

package launcher

import (
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-raffle/integration"
	"github.com/rony4d/go-raffle/keeper"
	"github.com/rony4d/go-raffle/raffle"
	"github.com/rony4d/go-raffle/vrf"
)

// Config aggregates every subsystem's configuration the launcher needs. It is
// what a --config TOML file decodes into; durations are strings such as "30s"
// and amounts are wei in decimal or 0x-hex.
type Config struct {
	Node    NodeConfig
	Raffle  RaffleConfig
	Keeper  KeeperConfig
	VRF     VRFConfig
	History HistoryConfig
	FakeNet FakeNetConfig
}

type NodeConfig struct {
	DataDir string
	Name    string
	Network string
	RPC     RPCConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

type RPCConfig struct {
	HTTPEnabled bool
	HTTPAddr    string
	HTTPPort    int
	HTTPAPI     []string
}

type MetricsConfig struct {
	Enabled  bool
	HTTPAddr string
	HTTPPort int
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

// RaffleConfig overrides the network preset. Empty or zero fields keep the
// preset's value.
type RaffleConfig struct {
	EntranceFee          string
	Interval             string
	RequestConfirmations uint64
	CallbackGasLimit     uint64
	GasLane              string
	SubscriptionID       uint64
}

type KeeperConfig struct {
	Enabled bool
	Period  string
}

type VRFConfig struct {
	Delay       string
	RetryDelay  string
	MaxAttempts int
	Funding     string
}

type HistoryConfig struct {
	Backend string
	Path    string
}

type FakeNetConfig struct {
	Accounts int
	Balance  string
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

// defaultConfig builds the Config from DefaultConfig in defaults.go so both
// stay in sync.

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: resolvePath(d.Node.DataDir),
			Name:    d.Node.Name,
			Network: d.Node.Network,
			RPC: RPCConfig{
				HTTPEnabled: d.RPC.EnableHTTP,
				HTTPAddr:    d.RPC.HTTPAddr,
				HTTPPort:    d.RPC.HTTPPort,
				HTTPAPI:     append([]string(nil), d.RPC.HTTPAPI...),
			},
			Metrics: MetricsConfig{
				Enabled:  d.Metrics.Enable,
				HTTPAddr: d.Metrics.HTTPAddr,
				HTTPPort: d.Metrics.HTTPPort,
			},
			Logging: LoggingConfig{
				Verbosity: d.Logging.Verbosity,
				Format:    d.Logging.Format,
				Color:     d.Logging.Color,
				SentryDSN: d.Logging.SentryDSN,
			},
		},
		Keeper: KeeperConfig{
			Enabled: d.Keeper.Enabled,
			Period:  d.Keeper.Period.String(),
		},
		VRF: VRFConfig{
			Delay:       d.VRF.Delay.String(),
			RetryDelay:  d.VRF.RetryDelay.String(),
			MaxAttempts: d.VRF.MaxAttempts,
			Funding:     d.VRF.Funding,
		},
		History: HistoryConfig{
			Backend: d.History.Backend,
			Path:    d.History.Path,
		},
		FakeNet: FakeNetConfig{
			Accounts: d.FakeNet.Accounts,
			Balance:  d.FakeNet.Balance,
		},
	}
}

// MakeAllConfigs merges defaults, the config file and CLI overrides into a
// single config struct, in that order, and checks the result.

func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if err := ensureDir(cfg.Node.DataDir); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

func loadConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrapf(err, "failed to load config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Errorf("config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.String("datadir"))
	}
	if ctx.IsSet("identity") {
		cfg.Node.Name = ctx.String("identity")
	}
	if ctx.IsSet("network") {
		cfg.Node.Network = ctx.String("network")
	}

	if ctx.Bool("http") {
		cfg.Node.RPC.HTTPEnabled = true
	}
	if ctx.IsSet("http.addr") {
		cfg.Node.RPC.HTTPAddr = ctx.String("http.addr")
	}
	if ctx.IsSet("http.port") {
		cfg.Node.RPC.HTTPPort = ctx.Int("http.port")
	}
	if ctx.IsSet("http.api") {
		cfg.Node.RPC.HTTPAPI = splitCSV(ctx.String("http.api"))
	}

	if ctx.Bool("metrics") {
		cfg.Node.Metrics.Enabled = true
	}
	if ctx.IsSet("metrics.addr") {
		cfg.Node.Metrics.HTTPAddr = ctx.String("metrics.addr")
	}
	if ctx.IsSet("metrics.port") {
		cfg.Node.Metrics.HTTPPort = ctx.Int("metrics.port")
	}

	if ctx.IsSet("log.format") {
		cfg.Node.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Node.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Node.Logging.SentryDSN = ctx.String("sentry.dsn")
	}

	if ctx.IsSet("raffle.fee") {
		cfg.Raffle.EntranceFee = ctx.String("raffle.fee")
	}
	if ctx.IsSet("raffle.interval") {
		cfg.Raffle.Interval = ctx.Duration("raffle.interval").String()
	}
	if ctx.IsSet("raffle.confirmations") {
		cfg.Raffle.RequestConfirmations = ctx.Uint64("raffle.confirmations")
	}
	if ctx.IsSet("raffle.callbackgas") {
		cfg.Raffle.CallbackGasLimit = ctx.Uint64("raffle.callbackgas")
	}
	if ctx.IsSet("raffle.gaslane") {
		cfg.Raffle.GasLane = ctx.String("raffle.gaslane")
	}
	if ctx.IsSet("raffle.subscription") {
		cfg.Raffle.SubscriptionID = ctx.Uint64("raffle.subscription")
	}

	if ctx.Bool("keeper.disable") {
		cfg.Keeper.Enabled = false
	}
	if ctx.IsSet("keeper.period") {
		cfg.Keeper.Period = ctx.Duration("keeper.period").String()
	}

	if ctx.IsSet("vrf.delay") {
		cfg.VRF.Delay = ctx.Duration("vrf.delay").String()
	}
	if ctx.IsSet("vrf.retry") {
		cfg.VRF.RetryDelay = ctx.Duration("vrf.retry").String()
	}
	if ctx.IsSet("vrf.attempts") {
		cfg.VRF.MaxAttempts = ctx.Int("vrf.attempts")
	}
	if ctx.IsSet("vrf.fund") {
		cfg.VRF.Funding = ctx.String("vrf.fund")
	}

	if ctx.IsSet("history.backend") {
		cfg.History.Backend = ctx.String("history.backend")
	}
	if ctx.IsSet("history.path") {
		cfg.History.Path = ctx.String("history.path")
	}
	if ctx.IsSet("fakenet.accounts") {
		cfg.FakeNet.Accounts = ctx.Int("fakenet.accounts")
	}
	if ctx.IsSet("fakenet.balance") {
		cfg.FakeNet.Balance = ctx.String("fakenet.balance")
	}
}

// validate checks every value that is converted later, so that a bad config
// fails before anything is started.
func (c Config) validate() error {
	if _, _, err := c.MakeRaffleConfig(); err != nil {
		return err
	}
	if _, err := c.Keeper.keeperConfig(); err != nil {
		return err
	}
	if _, err := c.VRF.responderConfig(); err != nil {
		return err
	}
	if _, err := parseWei("vrf funding", c.VRF.Funding); err != nil {
		return err
	}
	if _, err := parseWei("fakenet balance", c.FakeNet.Balance); err != nil {
		return err
	}
	if c.FakeNet.Accounts < 1 {
		return errors.Errorf("fakenet needs at least one account, have %d", c.FakeNet.Accounts)
	}
	switch c.History.Backend {
	case "bolt", "memory":
	default:
		return errors.Errorf("unknown history backend %q (valid: bolt, memory)", c.History.Backend)
	}
	switch c.Node.Logging.Format {
	case "text", "json":
	default:
		return errors.Errorf("unknown log format %q (valid: text, json)", c.Node.Logging.Format)
	}
	for _, module := range c.Node.RPC.HTTPAPI {
		if module != "raffle" && module != "dev" {
			return errors.Errorf("unknown API %q (valid: raffle, dev)", module)
		}
	}
	return nil
}

// MakeRaffleConfig starts from the raffle defaults, applies the network preset
// and then the Raffle section.
func (c Config) MakeRaffleConfig() (raffle.Config, integration.PresetConfig, error) {
	preset, err := integration.GetPresetByName(c.Node.Network)
	if err != nil {
		return raffle.Config{}, preset, err
	}
	rc := raffle.DefaultConfig()
	integration.ApplyPreset(&rc, preset)

	r := c.Raffle
	if r.EntranceFee != "" {
		if rc.EntranceFee, err = parseWei("entrance fee", r.EntranceFee); err != nil {
			return raffle.Config{}, preset, err
		}
	}
	if r.Interval != "" {
		if rc.Interval, err = parseDuration("raffle interval", r.Interval); err != nil {
			return raffle.Config{}, preset, err
		}
	}
	if r.RequestConfirmations > math.MaxUint16 {
		return raffle.Config{}, preset, errors.Errorf("invalid request confirmations %d: exceeds %d", r.RequestConfirmations, math.MaxUint16)
	}
	if r.RequestConfirmations != 0 {
		rc.RequestConfirmations = uint16(r.RequestConfirmations)
	}
	if r.CallbackGasLimit > math.MaxUint32 {
		return raffle.Config{}, preset, errors.Errorf("invalid callback gas limit %d: exceeds %d", r.CallbackGasLimit, uint64(math.MaxUint32))
	}
	if r.CallbackGasLimit != 0 {
		rc.CallbackGasLimit = uint32(r.CallbackGasLimit)
	}
	if r.GasLane != "" {
		lane, err := hexutil.Decode(r.GasLane)
		if err != nil || len(lane) != common.HashLength {
			return raffle.Config{}, preset, errors.Errorf("invalid gas lane %q: want 0x-prefixed 32 bytes", r.GasLane)
		}
		rc.GasLane = common.BytesToHash(lane)
	}
	if r.SubscriptionID != 0 {
		rc.SubscriptionID = r.SubscriptionID
	}
	if err := rc.Validate(); err != nil {
		return raffle.Config{}, preset, err
	}
	return rc, preset, nil
}

func (c KeeperConfig) keeperConfig() (keeper.Config, error) {
	period, err := parseDuration("keeper period", c.Period)
	if err != nil {
		return keeper.Config{}, err
	}
	return keeper.Config{Period: period}, nil
}

func (c VRFConfig) responderConfig() (vrf.ResponderConfig, error) {
	delay, err := parseDuration("vrf delay", c.Delay)
	if err != nil {
		return vrf.ResponderConfig{}, err
	}
	retry, err := parseDuration("vrf retry delay", c.RetryDelay)
	if err != nil {
		return vrf.ResponderConfig{}, err
	}
	return vrf.ResponderConfig{Delay: delay, RetryDelay: retry, MaxAttempts: c.MaxAttempts}, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func parseWei(what, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid %s %q: want a non-negative integer amount in wei", what, s)
	}
	return v, nil
}

func parseDuration(what, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", what)
	}
	if d <= 0 {
		return 0, errors.Errorf("invalid %s %q: must be positive", what, s)
	}
	return d, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
