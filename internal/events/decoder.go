package events

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"poolLedger/internal/model"
)

// Decoder decodes pool log records into typed events.
type Decoder struct {
	poolABI     abi.ABI
	topicToName map[string]string
}

func NewDecoder() (*Decoder, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, err
	}

	topicToName := make(map[string]string, len(poolABI.Events))
	for name, event := range poolABI.Events {
		topicToName[strings.ToLower(event.ID.Hex())] = name
	}

	return &Decoder{poolABI: poolABI, topicToName: topicToName}, nil
}

// CanDecode checks if the topic0 is a pool event.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Decode converts a LogRecord into a TypedEvent.
func (d *Decoder) Decode(log model.LogRecord) (*model.TypedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	event := d.poolABI.Events[name]

	fields, err := unpackFields(event, log)
	if err != nil {
		return nil, err
	}

	var decoded interface{}
	switch name {
	case model.EventCreated:
		decoded = model.CreatedEventData{
			Owner:       addressField(fields, "owner"),
			Price:       intField(fields, "price"),
			FeeRateBps:  uint16(uintField(fields, "feeRateBps")),
			MinBuy:      intField(fields, "minBuy"),
			TotalSupply: intField(fields, "totalSupply"),
		}
	case model.EventStateUpdated:
		decoded = model.StateUpdatedEventData{
			Previous: model.State(uintField(fields, "previous")),
			Current:  model.State(uintField(fields, "current")),
		}
	case model.EventTokenDeposited, model.EventSettlementDeposited:
		decoded = model.DepositEventData{
			Owner:  addressField(fields, "owner"),
			Amount: intField(fields, "amount"),
		}
	case model.EventBought:
		decoded = model.BoughtEventData{
			Buyer:    addressField(fields, "buyer"),
			Payment:  intField(fields, "payment"),
			UnitsOut: intField(fields, "unitsOut"),
			Fee:      intField(fields, "fee"),
		}
	case model.EventSold:
		decoded = model.SoldEventData{
			Seller:  addressField(fields, "seller"),
			UnitsIn: intField(fields, "unitsIn"),
			Gross:   intField(fields, "gross"),
			Net:     intField(fields, "net"),
			Fee:     intField(fields, "fee"),
		}
	case model.EventFeeWithdrawn:
		decoded = model.FeeWithdrawnEventData{
			Owner:  addressField(fields, "owner"),
			Amount: intField(fields, "amount"),
		}
	case model.EventOwnershipTransferred:
		decoded = model.OwnershipTransferredEventData{
			Previous: addressField(fields, "previousOwner"),
			Next:     addressField(fields, "newOwner"),
		}
	default:
		return nil, fmt.Errorf("unsupported event name: %s", name)
	}

	return &model.TypedEvent{
		CallID:    log.CallID,
		Sequence:  log.Sequence,
		LogIndex:  log.LogIndex,
		Address:   log.Address,
		EventName: name,
		Timestamp: log.Timestamp,
		Decoded:   decoded,
		Raw:       &model.RawLogRef{Topic0: log.Topics[0], Data: log.Data},
	}, nil
}

func unpackFields(event abi.Event, log model.LogRecord) (map[string]interface{}, error) {
	indexed := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(log.Topics))
	}
	topics, err := parseTopicHashes(log.Topics[1:])
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, len(event.Inputs))
	if err := abi.ParseTopicsIntoMap(fields, indexed, topics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	data, err := hexutil.Decode(log.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	if err := event.Inputs.NonIndexed().UnpackIntoMap(fields, data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return fields, nil
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func addressField(fields map[string]interface{}, key string) string {
	if addr, ok := fields[key].(common.Address); ok {
		return addr.Hex()
	}
	return ""
}

func intField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(*big.Int); ok && v != nil {
		return v.String()
	}
	return "0"
}

func uintField(fields map[string]interface{}, key string) uint64 {
	switch v := fields[key].(type) {
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	case *big.Int:
		if v != nil && v.IsUint64() {
			return v.Uint64()
		}
	}
	return 0
}
