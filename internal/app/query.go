package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"

	"pokerescrow/internal/state"
)

// AccountView is the /account/<addr> response.
type AccountView struct {
	Addr       string       `json:"addr"`
	Balance    sdkmath.Uint `json:"balance"`
	Nonce      uint64       `json:"nonce"`
	Registered bool         `json:"registered"`
}

// Query paths:
//   - /sessions        ascending session ids
//   - /session/<id>    full session record
//   - /account/<addr>  balance and auth info
func (a *App) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	value, err := a.query(strings.TrimSpace(req.Path))
	if err != nil {
		codespace, code, msg := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Code: code, Codespace: codespace, Log: msg, Height: a.st.Height}, nil
	}
	return &abci.QueryResponse{Code: 0, Value: value, Height: a.st.Height}, nil
}

func (a *App) query(path string) ([]byte, error) {
	switch {
	case path == "/sessions":
		return marshalQuery(a.st.SessionIDs())
	case strings.HasPrefix(path, "/session/"):
		raw := strings.TrimPrefix(path, "/session/")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, ErrInvalidRequest.Wrapf("invalid session id %q", raw)
		}
		s, err := getSession(a.st, id)
		if err != nil {
			return nil, err
		}
		return marshalQuery(s)
	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		if addr == "" {
			return nil, ErrInvalidRequest.Wrap("missing account")
		}
		return marshalQuery(accountView(a.st, addr))
	default:
		return nil, ErrInvalidRequest.Wrapf("unknown query path %q", path)
	}
}

func accountView(st *state.State, addr string) AccountView {
	return AccountView{
		Addr:       addr,
		Balance:    st.Balance(addr),
		Nonce:      st.NonceMax[addr],
		Registered: len(st.AccountKeys[addr]) != 0,
	}
}

func marshalQuery(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidRequest, err.Error())
	}
	return b, nil
}
