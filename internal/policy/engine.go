// Package policy gates tool calls with an OPA/Rego policy.
package policy

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/rego"
)

// Decision is the outcome of evaluating a tool call.
type Decision struct {
	Allow  bool
	Reason string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine. The module must define a partial set
// data.tool_policy.deny of human-readable reasons.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.deny"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile loads the policy module at path, or DefaultPolicy when
// path is empty.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return NewEngine(ctx, string(data))
}

// Evaluate checks one tool call. args is the decoded argument object.
func (e *Engine) Evaluate(ctx context.Context, toolName string, args map[string]interface{}) (Decision, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	input := map[string]interface{}{
		"tool_name": toolName,
		"args":      args,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Allow: true}, nil
	}

	var reasons []string
	switch v := results[0].Expressions[0].Value.(type) {
	case []interface{}:
		for _, r := range v {
			reasons = append(reasons, fmt.Sprint(r))
		}
	case nil:
	default:
		return Decision{}, fmt.Errorf("policy returned %T, want a set of reasons", v)
	}

	if len(reasons) == 0 {
		return Decision{Allow: true}, nil
	}
	sort.Strings(reasons)
	return Decision{Allow: false, Reason: strings.Join(reasons, "; ")}, nil
}

// DefaultPolicy rejects calls whose arguments can never succeed on chain.
const DefaultPolicy = `
package tool_policy

import rego.v1

verify_tools := {"verify_payment_and_mint_nft", "verify_deployment_payment_and_deploy"}

deny contains "transaction_hash must be a 0x-prefixed 32-byte hex hash" if {
	input.tool_name in verify_tools
	not valid_tx_hash(input.args.transaction_hash)
}

deny contains "user_wallet_address must be a 0x-prefixed 20-byte hex address" if {
	input.tool_name == "verify_payment_and_mint_nft"
	not valid_address(input.args.user_wallet_address)
}

deny contains "price_eth must not be negative" if {
	input.tool_name == "verify_deployment_payment_and_deploy"
	to_number(input.args.price_eth) < 0
}

deny contains "supply must not be negative" if {
	input.tool_name == "verify_deployment_payment_and_deploy"
	to_number(input.args.supply) < 0
}

deny contains "symbol must be 1 to 11 characters" if {
	input.tool_name == "verify_deployment_payment_and_deploy"
	not valid_symbol(input.args.symbol)
}

valid_tx_hash(h) if {
	is_string(h)
	regex.match(` + "`^0x[0-9a-fA-F]{64}$`" + `, h)
}

valid_address(a) if {
	is_string(a)
	regex.match(` + "`^0x[0-9a-fA-F]{40}$`" + `, a)
}

valid_symbol(s) if {
	is_string(s)
	n := count(trim_space(s))
	n >= 1
	n <= 11
}
`
