// Package api exposes a raffle over go-ethereum JSON-RPC.
//
// PublicRaffleAPI serves the read-only surface under the "raffle" namespace
// (raffle_entranceFee, raffle_getPlayer, raffle_checkUpkeep, ...). DevAPI is
// meant for development networks only: it lets callers spend from fake
// accounts held by the node.
package api

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/rony4d/go-raffle/history"
	"github.com/rony4d/go-raffle/raffle"
	"github.com/rony4d/go-raffle/vrf"
)

// Backend is the raffle surface served over RPC.
type Backend interface {
	EntranceFee() *big.Int
	Interval() time.Duration
	RequestConfirmations() uint16
	NumWords() uint32
	CallbackGasLimit() uint32
	GasLane() common.Hash
	SubscriptionID() uint64
	Address() common.Address

	RaffleState() raffle.State
	NumberOfPlayers() int
	Player(i int) (common.Address, error)
	RecentWinner() common.Address
	LastTimestamp() time.Time
	Balance() *big.Int
	Round() uint64
	PendingRequest() (vrf.RequestID, bool)
	History(from uint64, limit int) ([]*history.Settlement, error)

	CheckUpkeep(checkData []byte) (bool, []byte)
}

// PublicRaffleAPI provides read-only access to a raffle.
type PublicRaffleAPI struct {
	b Backend
}

func NewPublicRaffleAPI(b Backend) *PublicRaffleAPI {
	return &PublicRaffleAPI{b: b}
}

// EntranceFee returns the minimum entry payment in wei.
func (s *PublicRaffleAPI) EntranceFee() *hexutil.Big {
	return (*hexutil.Big)(s.b.EntranceFee())
}

// Interval returns the round interval in seconds.
func (s *PublicRaffleAPI) Interval() hexutil.Uint64 {
	return hexutil.Uint64(s.b.Interval() / time.Second)
}

func (s *PublicRaffleAPI) RequestConfirmations() hexutil.Uint64 {
	return hexutil.Uint64(s.b.RequestConfirmations())
}

func (s *PublicRaffleAPI) NumWords() hexutil.Uint64 {
	return hexutil.Uint64(s.b.NumWords())
}

func (s *PublicRaffleAPI) CallbackGasLimit() hexutil.Uint64 {
	return hexutil.Uint64(s.b.CallbackGasLimit())
}

func (s *PublicRaffleAPI) GasLane() common.Hash {
	return s.b.GasLane()
}

func (s *PublicRaffleAPI) SubscriptionId() hexutil.Uint64 {
	return hexutil.Uint64(s.b.SubscriptionID())
}

// Address returns the account holding the pot.
func (s *PublicRaffleAPI) Address() common.Address {
	return s.b.Address()
}

// GetRaffleState returns 0 while the round is open and 1 while a winner is
// being calculated.
func (s *PublicRaffleAPI) GetRaffleState() hexutil.Uint {
	return hexutil.Uint(s.b.RaffleState())
}

func (s *PublicRaffleAPI) GetNumberOfPlayers() hexutil.Uint64 {
	return hexutil.Uint64(s.b.NumberOfPlayers())
}

// GetPlayer returns the entrant at index. Out of range indexes are an error.
func (s *PublicRaffleAPI) GetPlayer(index hexutil.Uint64) (common.Address, error) {
	return s.b.Player(int(index))
}

func (s *PublicRaffleAPI) GetRecentWinner() common.Address {
	return s.b.RecentWinner()
}

// GetLastTimeStamp returns the unix time the live round started.
func (s *PublicRaffleAPI) GetLastTimeStamp() hexutil.Uint64 {
	return hexutil.Uint64(s.b.LastTimestamp().Unix())
}

func (s *PublicRaffleAPI) GetBalance() *hexutil.Big {
	return (*hexutil.Big)(s.b.Balance())
}

func (s *PublicRaffleAPI) GetRound() hexutil.Uint64 {
	return hexutil.Uint64(s.b.Round())
}

// GetPendingRequest returns the randomness request being waited on, or nil.
func (s *PublicRaffleAPI) GetPendingRequest() *hexutil.Uint64 {
	id, ok := s.b.PendingRequest()
	if !ok {
		return nil
	}
	v := hexutil.Uint64(id)
	return &v
}

// UpkeepResult is the answer to raffle_checkUpkeep.
type UpkeepResult struct {
	UpkeepNeeded bool          `json:"upkeepNeeded"`
	PerformData  hexutil.Bytes `json:"performData"`
}

func (s *PublicRaffleAPI) CheckUpkeep(checkData hexutil.Bytes) UpkeepResult {
	needed, data := s.b.CheckUpkeep(checkData)
	return UpkeepResult{UpkeepNeeded: needed, PerformData: data}
}

// RPCSettlement is a settled round as returned over RPC.
type RPCSettlement struct {
	Round      hexutil.Uint64 `json:"round"`
	RequestID  hexutil.Uint64 `json:"requestId"`
	Winner     common.Address `json:"winner"`
	Payout     *hexutil.Big   `json:"payout"`
	Players    hexutil.Uint64 `json:"players"`
	RandomWord *hexutil.Big   `json:"randomWord"`
	Timestamp  hexutil.Uint64 `json:"timestamp"`
}

// GetSettlements lists settled rounds starting at round from. A limit of 0
// returns all of them.
func (s *PublicRaffleAPI) GetSettlements(from hexutil.Uint64, limit hexutil.Uint64) ([]*RPCSettlement, error) {
	list, err := s.b.History(uint64(from), int(limit))
	if err != nil {
		return nil, err
	}
	out := make([]*RPCSettlement, len(list))
	for i, st := range list {
		out[i] = &RPCSettlement{
			Round:      hexutil.Uint64(st.Round),
			RequestID:  hexutil.Uint64(st.RequestID),
			Winner:     st.Winner,
			Payout:     (*hexutil.Big)(st.Payout),
			Players:    hexutil.Uint64(st.Players),
			RandomWord: (*hexutil.Big)(st.RandomWord),
			Timestamp:  hexutil.Uint64(st.Time),
		}
	}
	return out, nil
}

// APIs returns the RPC services for a raffle. dev may be nil.
func APIs(b Backend, dev *DevAPI) []rpc.API {
	apis := []rpc.API{
		{
			Namespace: "raffle",
			Version:   "1.0",
			Service:   NewPublicRaffleAPI(b),
			Public:    true,
		},
	}
	if dev != nil {
		apis = append(apis, rpc.API{
			Namespace: "dev",
			Version:   "1.0",
			Service:   dev,
		})
	}
	return apis
}

// NewServer registers apis on a fresh RPC server.
func NewServer(apis []rpc.API) (*rpc.Server, error) {
	srv := rpc.NewServer()
	for _, api := range apis {
		if err := srv.RegisterName(api.Namespace, api.Service); err != nil {
			srv.Stop()
			return nil, err
		}
	}
	return srv, nil
}
