package events

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"poolLedger/internal/model"
)

var (
	pool  = common.HexToAddress("0x9999999999999999999999999999999999999999")
	owner = common.HexToAddress("0x1111111111111111111111111111111111111111")
	buyer = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestEncodeDecodeBought(t *testing.T) {
	enc, err := NewEncoder(pool)
	if err != nil {
		t.Fatalf("encoder: %v", err)
	}
	dec, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	record, err := enc.Bought(buyer, big.NewInt(1_000), big.NewInt(997), big.NewInt(3))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(record.Topics) != 2 {
		t.Fatalf("expected buyer to be indexed: %v", record.Topics)
	}
	if !dec.CanDecode(record.Topics[0]) {
		t.Fatalf("decoder should recognize Bought topic")
	}

	event, err := dec.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.EventName != model.EventBought || event.Address != pool.Hex() {
		t.Fatalf("unexpected event: %+v", event)
	}
	bought, ok := event.Decoded.(model.BoughtEventData)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Decoded)
	}
	if bought.Buyer != buyer.Hex() || bought.Payment != "1000" || bought.UnitsOut != "997" || bought.Fee != "3" {
		t.Fatalf("payload mismatch: %+v", bought)
	}
}

func TestEncodeDecodeAdminEvents(t *testing.T) {
	enc, err := NewEncoder(pool)
	if err != nil {
		t.Fatalf("encoder: %v", err)
	}
	dec, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	created, err := enc.Created(owner, big.NewInt(5), 30, big.NewInt(7), big.NewInt(1_000_000))
	if err != nil {
		t.Fatalf("encode created: %v", err)
	}
	event, err := dec.Decode(created)
	if err != nil {
		t.Fatalf("decode created: %v", err)
	}
	payload := event.Decoded.(model.CreatedEventData)
	if payload.Owner != owner.Hex() || payload.FeeRateBps != 30 || payload.MinBuy != "7" || payload.TotalSupply != "1000000" {
		t.Fatalf("created mismatch: %+v", payload)
	}

	state, err := enc.StateUpdated(model.StateCreated, model.StatePaused)
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	event, err = dec.Decode(state)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	stateData := event.Decoded.(model.StateUpdatedEventData)
	if stateData.Previous != model.StateCreated || stateData.Current != model.StatePaused {
		t.Fatalf("state mismatch: %+v", stateData)
	}

	transfer, err := enc.OwnershipTransferred(owner, buyer)
	if err != nil {
		t.Fatalf("encode transfer: %v", err)
	}
	if transfer.Data != "0x" {
		t.Fatalf("ownership transfer should carry no data: %s", transfer.Data)
	}
	event, err = dec.Decode(transfer)
	if err != nil {
		t.Fatalf("decode transfer: %v", err)
	}
	transferData := event.Decoded.(model.OwnershipTransferredEventData)
	if transferData.Previous != owner.Hex() || transferData.Next != buyer.Hex() {
		t.Fatalf("transfer mismatch: %+v", transferData)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	dec, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	if _, err := dec.Decode(model.LogRecord{}); err == nil {
		t.Fatalf("expected error for missing topics")
	}
	if _, err := dec.Decode(model.LogRecord{Topics: []string{"0xdeadbeef"}}); err == nil {
		t.Fatalf("expected error for unknown topic0")
	}

	enc, _ := NewEncoder(pool)
	record, _ := enc.Sold(buyer, big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4))
	record.Topics = record.Topics[:1]
	if _, err := dec.Decode(record); err == nil {
		t.Fatalf("expected error for missing indexed topic")
	}
}
