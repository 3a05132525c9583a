package types

// Event types. The first four mirror the program events clients already index.
const (
	EventTypeTokensPurchased = "TokensPurchased"
	EventTypeGameCreated     = "GameCreated"
	EventTypeGameJoined      = "GameJoined"
	EventTypeGameFinalized   = "GameFinalized"

	EventTypeConfigInitialized  = "ConfigInitialized"
	EventTypePresaleInitialized = "PresaleInitialized"
	EventTypePresaleDeactivated = "PresaleDeactivated"
	EventTypeGamesPaused        = "GamesPaused"
	EventTypeGamesResumed       = "GamesResumed"

	EventTypeAccountRegistered = "AccountRegistered"
	EventTypeBankMinted        = "BankMinted"
	EventTypeBankSent          = "BankSent"
)

// Event attribute keys.
const (
	AttributeKeyGameID      = "gameId"
	AttributeKeyPlayer      = "player"
	AttributeKeyOpponent    = "opponent"
	AttributeKeyWagerAmount = "wagerAmount"
	AttributeKeyWinner      = "winner"
	AttributeKeyPrizePool   = "prizePool"
	AttributeKeyHouseFee    = "houseFee"
	AttributeKeyBuyer       = "buyer"
	AttributeKeyAmount      = "amount"
	AttributeKeyTotalCost   = "totalCost"
	AttributeKeyAuthority   = "authority"
	AttributeKeyAccount     = "account"
	AttributeKeyDenom       = "denom"
	AttributeKeyFrom        = "from"
	AttributeKeyTo          = "to"
	AttributeKeyVault       = "vault"
	AttributeKeyAddress     = "address"
)
