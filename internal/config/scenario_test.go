package config

import (
	"strings"
	"testing"
)

const validScenario = `
accounts:
  - name: alice
    address: "0x2222222222222222222222222222222222222222"
    settlement: "5"
steps:
  - op: deposit_token
    caller: owner
    amount: "500000"
  - op: update_state
    caller: owner
    state: active
  - op: buy
    caller: alice
    amount: "1"
    min_out: "0"
  - op: sell
    caller: alice
    amount: "2000"
    expect_error: insufficient_balance
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(validScenario))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sc.Accounts) != 1 || len(sc.Steps) != 4 {
		t.Fatalf("unexpected scenario: %+v", sc)
	}
	if sc.Steps[3].ExpectError != "insufficient_balance" || sc.Steps[1].State != "active" {
		t.Fatalf("unexpected steps: %+v", sc.Steps)
	}
}

func TestParseScenarioRejects(t *testing.T) {
	cases := map[string]string{
		"no steps":        "accounts: []\n",
		"unknown op":      "steps:\n  - op: mint\n    caller: owner\n",
		"bad address":     "accounts:\n  - name: bob\n    address: nope\nsteps:\n  - op: withdraw_fee\n    caller: owner\n",
		"missing amount":  "steps:\n  - op: buy\n    caller: owner\n",
		"non-numeric":     "steps:\n  - op: buy\n    caller: owner\n    amount: lots\n",
		"missing state":   "steps:\n  - op: update_state\n    caller: owner\n",
		"missing to":      "steps:\n  - op: transfer_ownership\n    caller: owner\n",
		"duplicate names": "accounts:\n  - name: bob\n    address: \"0x2222222222222222222222222222222222222222\"\n  - name: bob\n    address: \"0x3333333333333333333333333333333333333333\"\nsteps:\n  - op: withdraw_fee\n    caller: owner\n",
		"malformed yaml":  "steps: [\n",
	}
	for name, input := range cases {
		if _, err := ParseScenario([]byte(input)); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !strings.Contains(err.Error(), "scenario") {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
	}
}
