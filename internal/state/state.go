package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"

	sdkmath "cosmossdk.io/math"
)

// maxAmountBits bounds balances to the 256-bit range sdkmath.Uint supports.
const maxAmountBits = 256

type State struct {
	Height int64 `json:"height"`

	NextSessionID uint64                  `json:"nextSessionId"`
	Accounts      map[string]sdkmath.Uint `json:"accounts"`
	AccountKeys   map[string][]byte       `json:"accountKeys,omitempty"` // addr -> ed25519 pubkey (32 bytes)
	NonceMax      map[string]uint64       `json:"nonceMax,omitempty"`    // signer -> last accepted tx.nonce
	Sessions      map[uint64]*Session     `json:"sessions"`
}

func NewState() *State {
	return &State{
		Height:        0,
		NextSessionID: 1,
		Accounts:      map[string]sdkmath.Uint{},
		AccountKeys:   map[string][]byte{},
		NonceMax:      map[string]uint64{},
		Sessions:      map[uint64]*Session{},
	}
}

func (s *State) normalize() {
	if s.Accounts == nil {
		s.Accounts = map[string]sdkmath.Uint{}
	}
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	if s.Sessions == nil {
		s.Sessions = map[uint64]*Session{}
	}
	if s.NextSessionID == 0 {
		s.NextSessionID = 1
	}
}

func Load(home string) (*State, error) {
	path := filepath.Join(home, "state.json")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.normalize()
	return &st, nil
}

func (s *State) Save(home string) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return fmt.Errorf("mkdir home: %w", err)
	}
	path := filepath.Join(home, "state.json")
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize()
	return &out, nil
}

func (s *State) AppHash() []byte {
	// encoding/json does not guarantee map key order, so maps are normalized
	// into sorted slices before hashing.
	type accountKV struct {
		Addr    string       `json:"addr"`
		Balance sdkmath.Uint `json:"balance"`
	}
	type accountKeyKV struct {
		Addr   string `json:"addr"`
		PubKey []byte `json:"pubKey"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}
	type sessionKV struct {
		ID      uint64   `json:"id"`
		Session *Session `json:"session"`
	}

	accounts := make([]accountKV, 0, len(s.Accounts))
	for k, v := range s.Accounts {
		accounts = append(accounts, accountKV{Addr: k, Balance: v})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Addr < accounts[j].Addr })

	accountKeys := make([]accountKeyKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		accountKeys = append(accountKeys, accountKeyKV{Addr: k, PubKey: v})
	}
	sort.Slice(accountKeys, func(i, j int) bool { return accountKeys[i].Addr < accountKeys[j].Addr })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	sessions := make([]sessionKV, 0, len(s.Sessions))
	for id, sess := range s.Sessions {
		sessions = append(sessions, sessionKV{ID: id, Session: sess})
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })

	normalized := struct {
		Height        int64          `json:"height"`
		NextSessionID uint64         `json:"nextSessionId"`
		Accounts      []accountKV    `json:"accounts"`
		AccountKeys   []accountKeyKV `json:"accountKeys,omitempty"`
		NonceMax      []nonceKV      `json:"nonceMax,omitempty"`
		Sessions      []sessionKV    `json:"sessions"`
	}{
		Height:        s.Height,
		NextSessionID: s.NextSessionID,
		Accounts:      accounts,
		AccountKeys:   accountKeys,
		NonceMax:      nonces,
		Sessions:      sessions,
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}

// SessionIDs returns every known session id in ascending order.
func (s *State) SessionIDs() []uint64 {
	ids := make([]uint64, 0, len(s.Sessions))
	for id := range s.Sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ---- Bank ----

func (s *State) Balance(addr string) sdkmath.Uint {
	bal, ok := s.Accounts[addr]
	if !ok {
		return sdkmath.ZeroUint()
	}
	return bal
}

func (s *State) Credit(addr string, amount sdkmath.Uint) error {
	bal := s.Balance(addr)
	sum := new(big.Int).Add(bal.BigInt(), amount.BigInt())
	if sum.BitLen() > maxAmountBits {
		return fmt.Errorf("balance overflow: have=%s add=%s", bal, amount)
	}
	s.Accounts[addr] = sdkmath.NewUintFromBigInt(sum)
	return nil
}

func (s *State) Debit(addr string, amount sdkmath.Uint) error {
	bal := s.Balance(addr)
	if bal.LT(amount) {
		return fmt.Errorf("insufficient funds: have=%s need=%s", bal, amount)
	}
	s.Accounts[addr] = bal.Sub(amount)
	return nil
}
