package model

// Event names as they appear in the pool ABI.
const (
	EventCreated              = "Created"
	EventStateUpdated         = "StateUpdated"
	EventTokenDeposited       = "TokenDeposited"
	EventSettlementDeposited  = "SettlementDeposited"
	EventBought               = "Bought"
	EventSold                 = "Sold"
	EventFeeWithdrawn         = "FeeWithdrawn"
	EventOwnershipTransferred = "OwnershipTransferred"
)

// CreatedEventData is the decoded Created event payload.
type CreatedEventData struct {
	Owner       string `json:"owner"`
	Price       string `json:"price"`
	FeeRateBps  uint16 `json:"fee_rate_bps"`
	MinBuy      string `json:"min_buy"`
	TotalSupply string `json:"total_supply"`
}

// StateUpdatedEventData is the decoded StateUpdated event payload.
type StateUpdatedEventData struct {
	Previous State `json:"previous"`
	Current  State `json:"current"`
}

// DepositEventData is the decoded payload of TokenDeposited and SettlementDeposited.
type DepositEventData struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

// BoughtEventData is the decoded Bought event payload.
type BoughtEventData struct {
	Buyer    string `json:"buyer"`
	Payment  string `json:"payment"`
	UnitsOut string `json:"units_out"`
	Fee      string `json:"fee"`
}

// SoldEventData is the decoded Sold event payload.
type SoldEventData struct {
	Seller  string `json:"seller"`
	UnitsIn string `json:"units_in"`
	Gross   string `json:"gross"`
	Net     string `json:"net"`
	Fee     string `json:"fee"`
}

// FeeWithdrawnEventData is the decoded FeeWithdrawn event payload.
type FeeWithdrawnEventData struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

// OwnershipTransferredEventData is the decoded OwnershipTransferred event payload.
type OwnershipTransferredEventData struct {
	Previous string `json:"previous"`
	Next     string `json:"next"`
}
