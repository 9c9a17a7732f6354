package types

// Event types emitted by the PMM engine
const (
	EventTypePoolCreated     = "pool_created"
	EventTypePoolDeactivated = "pool_deactivated"
	EventTypeOracleSynced    = "oracle_price_synced"
	EventTypeLiquidityAdded  = "liquidity_added"
	EventTypeLiquidityRemove = "liquidity_removed"
	EventTypeSwapExecuted    = "swap_executed"
	EventTypeFeesCollected   = "fees_collected"
	EventTypePoolFeesClaimed = "pool_fees_claimed"
	EventTypeProtocolFees    = "protocol_fees_withdrawn"
	EventTypeParamsUpdated   = "params_updated"
)

// Event attribute keys
const (
	AttributeKeyPoolID      = "pool_id"
	AttributeKeyCreator     = "creator"
	AttributeKeyBaseDenom   = "base_denom"
	AttributeKeyQuoteDenom  = "quote_denom"
	AttributeKeyTrader      = "trader"
	AttributeKeyProvider    = "provider"
	AttributeKeyDenomIn     = "denom_in"
	AttributeKeyDenomOut    = "denom_out"
	AttributeKeyAmountIn    = "amount_in"
	AttributeKeyAmountOut   = "amount_out"
	AttributeKeyFee         = "fee"
	AttributeKeyProtocolFee = "protocol_fee"
	AttributeKeyShares      = "shares"
	AttributeKeyBaseAmount  = "base_amount"
	AttributeKeyQuoteAmount = "quote_amount"
	AttributeKeyOraclePrice = "oracle_price"
	AttributeKeyRecipient   = "recipient"
	AttributeKeyUpdatedBy   = "updated_by"
)
