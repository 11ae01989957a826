package solana

import (
	"context"
	"encoding/json"
)

// getInflationGovernor

type InflationGovernor struct {
	Initial        float64 `json:"initial"`
	Terminal       float64 `json:"terminal"`
	Taper          float64 `json:"taper"`
	Foundation     float64 `json:"foundation"`
	FoundationTerm float64 `json:"foundationTerm"`
}

type InflationGovernorResponse struct {
	Envelope
	Governor *InflationGovernor `json:"governor,omitempty"`
}

var getInflationGovernorOp = operation[InflationGovernorResponse]{
	method: "getInflationGovernor",
	action: "get inflation governor",
	decode: field(func(out *InflationGovernorResponse) **InflationGovernor { return &out.Governor }),
}

func (s *Service) GetInflationGovernor(ctx context.Context, args CommitmentArgs) *InflationGovernorResponse {
	return invoke(ctx, s.caller, getInflationGovernorOp, params{}.config(options{}.commitment(args.Commitment)))
}

// getInflationRate

type InflationRate struct {
	Total      float64 `json:"total"`
	Validator  float64 `json:"validator"`
	Foundation float64 `json:"foundation"`
	Epoch      uint64  `json:"epoch"`
}

type InflationRateResponse struct {
	Envelope
	Inflation *InflationRate `json:"inflation,omitempty"`
}

var getInflationRateOp = operation[InflationRateResponse]{
	method: "getInflationRate",
	action: "get inflation rate",
	decode: field(func(out *InflationRateResponse) **InflationRate { return &out.Inflation }),
}

func (s *Service) GetInflationRate(ctx context.Context) *InflationRateResponse {
	return invoke(ctx, s.caller, getInflationRateOp, params{})
}

// getInflationReward

type InflationRewardArgs struct {
	Addresses  []string   `json:"addresses" validate:"required,min=1,dive,solana_address" jsonschema_description:"List of account addresses to query rewards for"`
	Epoch      *uint64    `json:"epoch,omitempty" jsonschema_description:"Epoch to query rewards for (defaults to previous epoch)"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=confirmed finalized" jsonschema:"enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (confirmed, finalized)"`
}

type InflationReward struct {
	Epoch         uint64 `json:"epoch"`
	EffectiveSlot uint64 `json:"effectiveSlot"`
	Amount        uint64 `json:"amount"`
	PostBalance   uint64 `json:"postBalance"`
	Commission    *uint8 `json:"commission,omitempty"`
}

type InflationRewardResponse struct {
	Envelope
	// Rewards is aligned with the requested addresses; nil entries mean no
	// reward was found for that address.
	Rewards []*InflationReward `json:"rewards,omitzero"`
}

var getInflationRewardOp = operation[InflationRewardResponse]{
	method: "getInflationReward",
	action: "get inflation reward",
	decode: func(raw json.RawMessage, out *InflationRewardResponse) error {
		var rewards []*InflationReward
		if err := unmarshalResult(raw, &rewards); err != nil {
			return err
		}
		out.Rewards = nonNil(rewards)
		return nil
	},
}

func (s *Service) GetInflationReward(ctx context.Context, args InflationRewardArgs) *InflationRewardResponse {
	opts := options{}
	if args.Epoch != nil {
		opts.set("epoch", *args.Epoch)
	}
	opts.commitment(args.Commitment)
	return invoke(ctx, s.caller, getInflationRewardOp, params{args.Addresses}.config(opts))
}
