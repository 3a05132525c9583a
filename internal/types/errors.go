package types

import errorsmod "cosmossdk.io/errors"

// Codespace is the ABCI codespace shared by every battlesol error.
const Codespace = "battlesol"

// battlesol sentinel errors. Codes are part of the tx result contract; never renumber.
var (
	ErrInvalidRequest    = errorsmod.Register(Codespace, 1, "invalid request")
	ErrPresaleNotActive  = errorsmod.Register(Codespace, 2, "presale is not active")
	ErrPresaleNotStarted = errorsmod.Register(Codespace, 3, "presale has not started yet")
	ErrPresaleEnded      = errorsmod.Register(Codespace, 4, "presale has ended")
	ErrExceedsMaxSupply  = errorsmod.Register(Codespace, 5, "amount exceeds maximum supply")
	ErrMathOverflow      = errorsmod.Register(Codespace, 6, "math overflow")
	ErrGamesPaused       = errorsmod.Register(Codespace, 7, "games are currently paused")
	ErrInvalidWager      = errorsmod.Register(Codespace, 8, "invalid wager amount")
	ErrInvalidGameState  = errorsmod.Register(Codespace, 9, "invalid game state")
	ErrCannotPlaySelf    = errorsmod.Register(Codespace, 10, "cannot play against yourself")
	ErrInvalidCommitment = errorsmod.Register(Codespace, 11, "invalid commitment")
	ErrUnauthorized      = errorsmod.Register(Codespace, 12, "unauthorized")
	ErrGameNotFound      = errorsmod.Register(Codespace, 13, "game not found")
	ErrNotInitialized    = errorsmod.Register(Codespace, 14, "not initialized")
	ErrAlreadyInit       = errorsmod.Register(Codespace, 15, "already initialized")
	ErrInsufficientFunds = errorsmod.Register(Codespace, 16, "insufficient funds")
	ErrEscrowMismatch    = errorsmod.Register(Codespace, 17, "escrow balance mismatch")
	ErrNotParticipant    = errorsmod.Register(Codespace, 18, "caller is not a participant")
	ErrInvalidSignature  = errorsmod.Register(Codespace, 19, "invalid signature")
	ErrReplayedNonce     = errorsmod.Register(Codespace, 20, "replayed tx nonce")
)
