package api

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rony4d/go-raffle/ledger"
	"github.com/rony4d/go-raffle/vrf"
)

// DevRaffle is what DevAPI drives.
type DevRaffle interface {
	Enter(player common.Address, value *big.Int) error
	PerformUpkeep(performData []byte) (vrf.RequestID, error)
}

// DevAPI spends on behalf of the node's fake accounts. Never expose it on a
// public endpoint.
type DevAPI struct {
	raffle   DevRaffle
	balances ledger.Transactor
	accounts map[common.Address]bool
}

// NewDevAPI allows accounts to be used as senders.
func NewDevAPI(r DevRaffle, balances ledger.Transactor, accounts []common.Address) *DevAPI {
	unlocked := make(map[common.Address]bool, len(accounts))
	for _, acc := range accounts {
		unlocked[acc] = true
	}
	return &DevAPI{raffle: r, balances: balances, accounts: unlocked}
}

// Accounts lists the unlocked fake accounts.
func (d *DevAPI) Accounts() []common.Address {
	out := make([]common.Address, 0, len(d.accounts))
	for acc := range d.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Hash().Big().Cmp(out[j].Hash().Big()) < 0
	})
	return out
}

// Enter pays value from player into the raffle.
func (d *DevAPI) Enter(player common.Address, value *hexutil.Big) error {
	if !d.accounts[player] {
		return fmt.Errorf("account %s is not unlocked", player.Hex())
	}
	return d.raffle.Enter(player, (*big.Int)(value))
}

// PerformUpkeep closes the round without waiting for a keeper.
func (d *DevAPI) PerformUpkeep() (hexutil.Uint64, error) {
	id, err := d.raffle.PerformUpkeep(nil)
	return hexutil.Uint64(id), err
}

// GetBalance returns the ledger balance of addr.
func (d *DevAPI) GetBalance(addr common.Address) *hexutil.Big {
	return (*hexutil.Big)(d.balances.BalanceOf(addr))
}
