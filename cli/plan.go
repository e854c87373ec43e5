// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/counterprogram/runtime"
)

type Op string

const (
	OpKey        Op = "key"
	OpAirdrop    Op = "airdrop"
	OpInitialize Op = "initialize"
	OpIncrement  Op = "increment"
	OpDecrement  Op = "decrement"
	OpGet        Op = "get"
)

// Plan is a scripted sequence of ledger operations.
type Plan struct {
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

type Step struct {
	Description string `yaml:"description,omitempty"`
	Op          Op     `yaml:"op"`

	// Name is the key created by a key step.
	Name string `yaml:"name,omitempty"`
	// Account is the airdrop recipient.
	Account  string `yaml:"account,omitempty"`
	Lamports uint64 `yaml:"lamports,omitempty"`

	Payer   string `yaml:"payer,omitempty"`
	Counter string `yaml:"counter,omitempty"`
	Signer  string `yaml:"signer,omitempty"`
	Value   uint64 `yaml:"value,omitempty"`

	Require *Require `yaml:"require,omitempty"`
}

// Require asserts the outcome of a step. Kind is compared against the error
// kind of the transaction ("None" for success). Value is compared against
// the counter after the step.
type Require struct {
	Kind  string  `yaml:"kind,omitempty"`
	Value *uint64 `yaml:"value,omitempty"`
}

// StepResult is printed as one JSON line per step.
type StepResult struct {
	ID    int     `json:"id"`
	Op    Op      `json:"op"`
	TxID  string  `json:"txId,omitempty"`
	Kind  string  `json:"kind,omitempty"`
	Value *uint64 `json:"value,omitempty"`
	Msg   string  `json:"msg,omitempty"`
	Error string  `json:"error,omitempty"`
}

// UnmarshalPlan parses a YAML (or JSON) plan and verifies its steps.
func UnmarshalPlan(b []byte) (*Plan, error) {
	var p Plan
	if err := yaml.UnmarshalStrict(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return &p, p.Verify()
}

func (p *Plan) Verify() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps found", ErrInvalidPlan)
	}
	for i := range p.Steps {
		if err := p.Steps[i].verify(); err != nil {
			return fmt.Errorf("%w %d: %w", ErrInvalidStep, i, err)
		}
	}
	return nil
}

func (s *Step) verify() error {
	switch s.Op {
	case OpKey:
		if err := verifyKeyName(s.Name); err != nil {
			return err
		}
	case OpAirdrop:
		if s.Account == "" {
			return errors.New("airdrop requires an account")
		}
	case OpInitialize:
		if s.Payer == "" || s.Counter == "" {
			return errors.New("initialize requires a payer and a counter")
		}
	case OpIncrement, OpDecrement, OpGet:
		if s.Counter == "" {
			return fmt.Errorf("%s requires a counter", s.Op)
		}
		if s.Op == OpGet && s.Require != nil && s.Require.Kind != "" {
			return errors.New("get cannot require an error kind")
		}
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	if s.Require != nil && (s.Op == OpKey || s.Op == OpAirdrop) {
		return fmt.Errorf("%s cannot have requirements", s.Op)
	}
	return nil
}

// RunPlan executes [plan] step by step and writes one [StepResult] per step
// to [w]. It stops at the first step that fails or misses a requirement.
func (h *Handler) RunPlan(ctx context.Context, plan *Plan, w io.Writer) ([]*StepResult, error) {
	h.log.Info("running plan",
		zap.String("description", plan.Description),
		zap.Int("steps", len(plan.Steps)),
	)
	enc := json.NewEncoder(w)
	results := make([]*StepResult, 0, len(plan.Steps))
	for i := range plan.Steps {
		step := &plan.Steps[i]
		h.log.Info("plan step",
			zap.Int("step", i),
			zap.String("description", step.Description),
			zap.String("op", string(step.Op)),
		)
		res := &StepResult{ID: i, Op: step.Op}
		err := h.runStep(ctx, step, res)
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
		if encErr := enc.Encode(res); encErr != nil {
			return results, encErr
		}
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return results, nil
}

func (h *Handler) runStep(ctx context.Context, step *Step, res *StepResult) error {
	var result *runtime.Result
	switch step.Op {
	case OpKey:
		addr, err := h.CreateKey(ctx, step.Name)
		if errors.Is(err, ErrDuplicate) {
			h.log.Debug("key already exists", zap.String("name", step.Name))
			res.Msg = fmt.Sprintf("key %s already exists", step.Name)
			return nil
		}
		if err != nil {
			return err
		}
		res.Msg = fmt.Sprintf("created key %s with address %s", step.Name, addr)
		return nil
	case OpAirdrop:
		balance, err := h.Airdrop(ctx, step.Account, step.Lamports)
		if err != nil {
			return err
		}
		res.Msg = fmt.Sprintf("balance %d", balance)
		return nil
	case OpGet:
		v, err := h.Get(ctx, step.Counter)
		if err != nil {
			return err
		}
		res.Value = &v
		return checkValue(step.Require, v)
	case OpInitialize:
		var err error
		result, err = h.Initialize(ctx, step.Payer, step.Counter, step.Value)
		if err != nil {
			return err
		}
	case OpIncrement:
		var err error
		result, err = h.Increment(ctx, step.Counter, step.Signer)
		if err != nil {
			return err
		}
	case OpDecrement:
		var err error
		result, err = h.Decrement(ctx, step.Counter, step.Signer)
		if err != nil {
			return err
		}
	}

	res.TxID = result.TxID.String()
	res.Kind = result.Kind
	if err := checkKind(step.Require, result); err != nil {
		return err
	}
	if step.Require == nil || step.Require.Value == nil {
		return nil
	}
	v, err := h.Get(ctx, step.Counter)
	if err != nil {
		return err
	}
	res.Value = &v
	return checkValue(step.Require, v)
}

// checkKind fails a step whose transaction failed unless the failure was
// required.
func checkKind(r *Require, result *runtime.Result) error {
	if r == nil || r.Kind == "" {
		if !result.Success {
			return fmt.Errorf("%w: %s: %s", ErrTxFailed, result.Kind, result.Error)
		}
		return nil
	}
	if r.Kind != result.Kind {
		return fmt.Errorf("%w: expected kind %s but got %s", ErrRequireFailed, r.Kind, result.Kind)
	}
	return nil
}

func checkValue(r *Require, v uint64) error {
	if r == nil || r.Value == nil || *r.Value == v {
		return nil
	}
	return fmt.Errorf("%w: expected counter %d but got %d", ErrRequireFailed, *r.Value, v)
}
