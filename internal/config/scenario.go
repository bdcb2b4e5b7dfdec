package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scenario operation names.
const (
	OpDepositToken      = "deposit_token"
	OpDepositSettlement = "deposit_settlement"
	OpUpdateState       = "update_state"
	OpBuy               = "buy"
	OpSell              = "sell"
	OpWithdrawFee       = "withdraw_fee"
	OpTransferOwnership = "transfer_ownership"
)

// Scenario is a scripted sequence of pool calls.
type Scenario struct {
	Accounts []Account `yaml:"accounts" validate:"dive"`
	Steps    []Step    `yaml:"steps" validate:"required,min=1,dive"`
}

// Account names an identity and the settlement it starts with.
type Account struct {
	Name       string `yaml:"name" validate:"required,alphanum"`
	Address    string `yaml:"address" validate:"required,eth_addr"`
	Settlement string `yaml:"settlement" validate:"omitempty,numeric"`
}

// Step is a single pool call. Amounts are decimal strings in whole units.
type Step struct {
	Op          string `yaml:"op" validate:"required,oneof=deposit_token deposit_settlement update_state buy sell withdraw_fee transfer_ownership"`
	Caller      string `yaml:"caller" validate:"required"`
	Amount      string `yaml:"amount" validate:"omitempty,numeric"`
	MinOut      string `yaml:"min_out" validate:"omitempty,numeric"`
	State       string `yaml:"state" validate:"required_if=Op update_state"`
	To          string `yaml:"to" validate:"required_if=Op transfer_ownership"`
	ExpectError string `yaml:"expect_error"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(sc); err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario: %w", err)
	}

	seen := make(map[string]struct{}, len(sc.Accounts))
	for _, acc := range sc.Accounts {
		if _, dup := seen[acc.Name]; dup {
			return Scenario{}, fmt.Errorf("invalid scenario: duplicate account %q", acc.Name)
		}
		seen[acc.Name] = struct{}{}
	}
	for i, step := range sc.Steps {
		switch step.Op {
		case OpDepositToken, OpDepositSettlement, OpBuy, OpSell:
			if step.Amount == "" {
				return Scenario{}, fmt.Errorf("invalid scenario: step %d (%s) needs an amount", i+1, step.Op)
			}
		}
	}
	return sc, nil
}
