package launcher

import "time"

// Defaults bundles the baseline configuration values the launcher uses before
// the network preset, config file and flags override them.

type Defaults struct {
	Node    NodeDefaults
	RPC     RPCDefaults
	Metrics MetricsDefaults
	Logging LoggingDefaults
	Keeper  KeeperDefaults
	VRF     VRFDefaults
	History HistoryDefaults
	FakeNet FakeNetDefaults
}

// NodeDefaults captures top-level node settings.

type NodeDefaults struct {
	DataDir string //	Filesystem root where the node keeps its history database. Changing it lets you run several nodes side by side.
	Name    string //	Human-readable node identity shown in logs.
	Network string //	Network preset the raffle parameters start from; only development networks can be served.
}

// RPCDefaults captures the HTTP JSON-RPC options.
type RPCDefaults struct {
	EnableHTTP bool     //	Toggle for the JSON-RPC HTTP server.
	HTTPAddr   string   //	IP/interface the HTTP server binds to (127.0.0.1 for local-only).
	HTTPPort   int      //	TCP port clients connect to; 18545 avoids colliding with a local geth on 8545.
	HTTPAPI    []string //	API namespaces served over HTTP. "dev" spends from fake accounts and must stay local.
}

type MetricsDefaults struct {
	Enable   bool   //	Toggle for the metrics HTTP endpoint (/debug/metrics).
	HTTPAddr string //	IP/interface the metrics server binds to.
	HTTPPort int    //	TCP port of the metrics server.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	Log level numeric (0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes (best disabled when piping to files).
	SentryDSN string //	Error reports go to this Sentry project when set.
}

// KeeperDefaults tunes the upkeep loop.
type KeeperDefaults struct {
	Enabled bool          //	Whether rounds are closed automatically.
	Period  time.Duration //	Time between two upkeep checks.
}

// VRFDefaults tunes the in-process randomness responder.
type VRFDefaults struct {
	Delay       time.Duration //	Delay between a request and the first delivery attempt, standing in for block confirmations.
	RetryDelay  time.Duration //	Delay between failed deliveries (e.g. when the winner refuses the payout).
	MaxAttempts int           //	Delivery attempts per request before the responder gives up.
	Funding     string        //	Amount (in juels) the development subscription is funded with at startup.
}

// HistoryDefaults selects where settlements are recorded.
type HistoryDefaults struct {
	Backend string //	"bolt" for a database file under the datadir, "memory" for nothing on disk.
	Path    string //	Database file, relative to the datadir unless absolute.
}

// FakeNetDefaults shapes the pre-funded accounts of development networks.
type FakeNetDefaults struct {
	Accounts int    //	Number of deterministic fake accounts in the genesis allocation.
	Balance  string //	Genesis balance of each account, in wei.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.raffle",
			Name:    "go-raffle",
			Network: "localhost",
		},
		RPC: RPCDefaults{
			EnableHTTP: false,
			HTTPAddr:   "127.0.0.1",
			HTTPPort:   18545,
			HTTPAPI:    []string{"raffle"},
		},
		Metrics: MetricsDefaults{
			Enable:   false,
			HTTPAddr: "127.0.0.1",
			HTTPPort: 6060,
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
		Keeper: KeeperDefaults{
			Enabled: true,
			Period:  time.Second,
		},
		VRF: VRFDefaults{
			Delay:       time.Second,
			RetryDelay:  5 * time.Second,
			MaxAttempts: 5,
			Funding:     "10000000000000000000", // 10 LINK
		},
		History: HistoryDefaults{
			Backend: "bolt",
			Path:    "history.db",
		},
		FakeNet: FakeNetDefaults{
			Accounts: 10,
			Balance:  "1000000000000000000000", // 1000 ether
		},
	}
}
