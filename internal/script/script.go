// Package script defines the script model: the typed representation of a
// scenario, either a declarative step list or an imperative program, plus
// the bindings a running script sees.
package script

import (
	"context"
	"fmt"

	"github.com/regweaver/regweaver/internal/coordinator"
	"github.com/regweaver/regweaver/internal/node"
	"github.com/regweaver/regweaver/internal/tx"
	"github.com/regweaver/regweaver/internal/wallet"
)

// Kind tags the two script flavors sharing one execution pipeline.
type Kind string

const (
	// Declarative scripts are an ordered list of {action, params} steps
	// interpreted against the action registry.
	Declarative Kind = "declarative"
	// Imperative scripts are a Go program run with the context's bindings.
	Imperative Kind = "imperative"
)

// Script is the immutable, loaded form of a scenario.
type Script struct {
	Name        string `yaml:"name" validate:"required,min=1,max=100"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Kind        Kind   `yaml:"-"`
	Steps       []Step `yaml:"steps" validate:"required,min=1,dive"`

	// Program is set only for imperative scripts; Steps is empty then.
	Program ProgramFunc `yaml:"-" validate:"-"`
}

// Step is one declarative action invocation.
type Step struct {
	Action string `yaml:"action" validate:"required"`
	Params Params `yaml:"params,omitempty"`
}

// Params carries a step's named arguments with loosely typed YAML values.
type Params map[string]any

// String returns the named param as a string.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("param %q is missing", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %q must be a string, got %T", key, v)
	}
	return s, nil
}

// Int64 returns the named param as an integer. YAML numbers decode as int,
// int64, or float64 depending on their spelling.
func (p Params) Int64(key string) (int64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("param %q is missing", key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("param %q must be an integer, got %v", key, n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("param %q must be an integer, got %T", key, v)
	}
}

// Float returns the named param as a number.
func (p Params) Float(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("param %q is missing", key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("param %q must be a number, got %T", key, v)
	}
	return f, nil
}

// Outputs decodes the named param as a list of address->amount entries. Each
// entry is a single-key mapping, e.g. {bcrt1q...: 5.0}.
func (p Params) Outputs(key string) ([]tx.Output, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("param %q is missing", key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("param %q must be a list of outputs, got %T", key, v)
	}

	outputs := make([]tx.Output, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("param %q entry %d must be an address->amount mapping, got %T", key, i, entry)
		}
		for addr, amt := range m {
			amount, ok := toFloat(amt)
			if !ok {
				return nil, fmt.Errorf("param %q entry %d: amount for %s must be a number, got %T", key, i, addr, amt)
			}
			outputs = append(outputs, tx.Output{Address: addr, Amount: amount})
		}
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("param %q must contain at least one output", key)
	}
	return outputs, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Bindings is the complete set of names visible to a running script: the
// service handles plus the per-run state registries. Imperative programs
// receive exactly this value and nothing else; declarative handlers reach it
// through the execution context.
type Bindings struct {
	WalletService      *wallet.Service
	TransactionService *tx.Service
	RPCClient          node.Client
	CoordinatorService *coordinator.Service
	Config             *node.Config

	Wallets      map[string]*wallet.Ref
	Transactions map[string]*tx.Record
	Blocks       []string
}

// ProgramFunc is the body of an imperative script.
type ProgramFunc func(ctx context.Context, env *Bindings) error
