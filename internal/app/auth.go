package app

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"

	abci "github.com/cometbft/cometbft/abci/types"

	"battlesol/internal/codec"
	"battlesol/internal/state"
	"battlesol/internal/types"
)

const txAuthDomainV1 = "bsol/tx/v1"

func txAuthSignBytesV1(typ string, value []byte, nonce string, signer string) []byte {
	// signBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomainV1)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomainV1)...)
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
		return types.ErrInvalidSignature.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return types.ErrInvalidSignature.Wrap("missing tx.signer")
	}
	if len(env.Sig) == 0 {
		return types.ErrInvalidSignature.Wrap("missing tx.sig")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return types.ErrInvalidSignature.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

func requireRegisterAccountAuth(env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) error {
	if msg.Account == "" {
		return types.ErrInvalidRequest.Wrap("missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return types.ErrInvalidRequest.Wrapf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != msg.Account {
		return types.ErrUnauthorized.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	msgBytes := txAuthSignBytesV1(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(msg.PubKey), msgBytes, env.Sig) {
		return types.ErrInvalidSignature
	}
	return nil
}

// requireAccountAuth checks that env is signed by account's registered key.
func requireAccountAuth(st *state.State, env codec.TxEnvelope, account string) error {
	if account == "" {
		return types.ErrInvalidRequest.Wrap("missing account")
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != account {
		return types.ErrUnauthorized.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, account)
	}
	pub := st.AccountKeys[account]
	if len(pub) != ed25519.PublicKeySize {
		return types.ErrUnauthorized.Wrapf("account %q missing pubKey (auth/register_account required)", account)
	}
	msg := txAuthSignBytesV1(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return types.ErrInvalidSignature
	}
	return consumeNonce(st, env)
}

// consumeNonce records env.Nonce for the signer. Nonces must strictly increase.
func consumeNonce(st *state.State, env codec.TxEnvelope) error {
	n, err := env.NonceValue()
	if err != nil {
		return types.ErrInvalidSignature.Wrap(err.Error())
	}
	if prev, ok := st.NonceMax[env.Signer]; ok && n <= prev {
		return types.ErrReplayedNonce.Wrapf("signer %q: nonce %d <= %d", env.Signer, n, prev)
	}
	st.NonceMax[env.Signer] = n
	return nil
}

func (a *App) handleRegisterAccount(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.AuthRegisterAccountTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	if err := requireRegisterAccountAuth(ctx.env, msg); err != nil {
		return nil, err
	}
	if types.IsDerivedAddress(msg.Account) {
		return nil, types.ErrUnauthorized.Wrapf("%s is a derived record address", msg.Account)
	}
	if existing, ok := ctx.st.AccountKeys[msg.Account]; ok && !bytes.Equal(existing, msg.PubKey) {
		return nil, types.ErrAlreadyInit.Wrapf("account %q already has a different pubKey", msg.Account)
	}
	if err := consumeNonce(ctx.st, ctx.env); err != nil {
		return nil, err
	}
	ctx.st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
	return okEvent(types.EventTypeAccountRegistered, map[string]string{
		types.AttributeKeyAccount: msg.Account,
	}), nil
}
