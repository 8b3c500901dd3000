package app

import (
	"crypto/ed25519"
	"crypto/sha256"
	"strconv"

	"pokerescrow/internal/codec"
	"pokerescrow/internal/state"
)

const txAuthDomainV0 = "pokerescrow/tx/v0"

func txAuthSignBytesV0(typ string, value []byte, nonce string, signer string) []byte {
	// signBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomainV0)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomainV0)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return ErrUnauthenticated.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return ErrUnauthenticated.Wrap("missing tx.signer")
	}
	if len(env.Sig) == 0 {
		return ErrUnauthenticated.Wrap("missing tx.sig")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return ErrUnauthenticated.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

func verifyEnvelope(pub []byte, env codec.TxEnvelope) error {
	msg := txAuthSignBytesV0(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return ErrUnauthenticated.Wrap("invalid signature")
	}
	return nil
}

// requireRegisterAccountAuth checks that the registration is signed by the
// key it registers.
func requireRegisterAccountAuth(st *state.State, env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) error {
	if msg.Account == "" {
		return ErrInvalidParameter.Wrap("missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return ErrInvalidParameter.Wrapf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != msg.Account {
		return ErrUnauthenticated.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	if existing := st.AccountKeys[msg.Account]; len(existing) != 0 {
		return ErrInvalidState.Wrapf("account %q already registered", msg.Account)
	}
	return verifyEnvelope(msg.PubKey, env)
}

// requireAccountAuth returns the authenticated actor for env. When account
// is non-empty the signer must match it.
func requireAccountAuth(st *state.State, env codec.TxEnvelope, account string) (string, error) {
	if err := requireSignedEnvelope(env); err != nil {
		return "", err
	}
	if account != "" && env.Signer != account {
		return "", ErrUnauthenticated.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, account)
	}
	pub := st.AccountKeys[env.Signer]
	if len(pub) != ed25519.PublicKeySize {
		return "", ErrUnauthenticated.Wrapf("account %q missing pubKey (auth/register_account required)", env.Signer)
	}
	if err := verifyEnvelope(pub, env); err != nil {
		return "", err
	}
	return env.Signer, nil
}

// consumeNonce enforces a strictly increasing nonce per signer. Nonces
// start at 1.
func consumeNonce(st *state.State, env codec.TxEnvelope) error {
	n, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return ErrUnauthenticated.Wrapf("invalid tx.nonce %q", env.Nonce)
	}
	if last := st.NonceMax[env.Signer]; n <= last {
		return ErrUnauthenticated.Wrapf("replayed tx.nonce: got=%d last=%d", n, last)
	}
	st.NonceMax[env.Signer] = n
	return nil
}
