package solana

import (
	"context"
	"encoding/json"
	"strings"
)

type Account struct {
	// Data is either [payload, encoding] or a parsed object for jsonParsed.
	Data       json.RawMessage `json:"data"`
	Executable bool            `json:"executable"`
	Lamports   uint64          `json:"lamports"`
	Owner      string          `json:"owner"`
	RentEpoch  uint64          `json:"rentEpoch"`
	Space      uint64          `json:"space"`
}

// getBalance

type BalanceArgs struct {
	Address    string     `json:"address" validate:"required,solana_address" jsonschema_description:"The Solana wallet address to check"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type BalanceResponse struct {
	Envelope
	Address         string   `json:"address,omitempty"`
	BalanceLamports *uint64  `json:"balance_lamports,omitempty"`
	BalanceSOL      *float64 `json:"balance_sol,omitempty"`
}

var getBalanceOp = operation[BalanceResponse]{
	method: "getBalance",
	action: "get balance",
	decode: func(raw json.RawMessage, out *BalanceResponse) error {
		var res contextual[*uint64]
		if err := unmarshalResult(raw, &res); err != nil {
			return err
		}
		if res.Value == nil {
			return errMissingValue
		}
		sol := LamportsToSOL(*res.Value)
		out.BalanceLamports = res.Value
		out.BalanceSOL = &sol
		return nil
	},
}

func (s *Service) GetBalance(ctx context.Context, args BalanceArgs) *BalanceResponse {
	p := params{args.Address}.config(options{}.commitment(args.Commitment))
	resp := invoke(ctx, s.caller, getBalanceOp, p)
	if resp.Succeeded() {
		resp.Address = args.Address
	}
	return resp
}

// getAccountInfo

const DefaultAccountEncoding = "base58"

type AccountInfoArgs struct {
	Address         string     `json:"address" validate:"required,solana_address" jsonschema_description:"The Solana account address to query, as base-58 encoded string"`
	Encoding        string     `json:"encoding,omitempty" validate:"omitempty,oneof=base58 base64 base64+zstd jsonParsed" jsonschema:"enum=base58,enum=base64,enum=base64+zstd,enum=jsonParsed" jsonschema_description:"Encoding format for Account data (base58, base64, base64+zstd, jsonParsed). Defaults to base58"`
	DataSliceOffset *uint64    `json:"data_slice_offset,omitempty" jsonschema_description:"Byte offset to start reading account data (only for base58, base64, or base64+zstd encodings)"`
	DataSliceLength *uint64    `json:"data_slice_length,omitempty" jsonschema_description:"Number of bytes to return (only for base58, base64, or base64+zstd encodings)"`
	Commitment      Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type AccountInfoResponse struct {
	Envelope
	Address string   `json:"address,omitempty"`
	Value   *Account `json:"value,omitempty"`
}

var getAccountInfoOp = operation[AccountInfoResponse]{
	method: "getAccountInfo",
	action: "get account info",
	decode: func(raw json.RawMessage, out *AccountInfoResponse) error {
		var res contextual[*Account]
		if err := unmarshalResult(raw, &res); err != nil {
			return err
		}
		if res.Value == nil {
			out.Message = "Account not found"
			return nil
		}
		out.Value = res.Value
		return nil
	},
}

func (s *Service) GetAccountInfo(ctx context.Context, args AccountInfoArgs) *AccountInfoResponse {
	opts := options{}.str("encoding", defaultString(args.Encoding, DefaultAccountEncoding))
	if ds := dataSlice(args.DataSliceOffset, args.DataSliceLength); ds != nil {
		opts.set("dataSlice", ds)
	}
	opts.commitment(args.Commitment)

	resp := invoke(ctx, s.caller, getAccountInfoOp, params{args.Address}.config(opts))
	if resp.Succeeded() {
		resp.Address = args.Address
	}
	return resp
}

// getMultipleAccounts

const DefaultMultipleAccountsEncoding = "base64"

type MultipleAccountsArgs struct {
	Addresses       []string   `json:"addresses" validate:"required,min=1,max=100,dive,solana_address" jsonschema_description:"Account addresses to query (at most 100), as base-58 encoded strings"`
	Encoding        string     `json:"encoding,omitempty" validate:"omitempty,oneof=base58 base64 base64+zstd jsonParsed" jsonschema:"enum=base58,enum=base64,enum=base64+zstd,enum=jsonParsed" jsonschema_description:"Encoding format for Account data. Defaults to base64"`
	DataSliceOffset *uint64    `json:"data_slice_offset,omitempty" jsonschema_description:"Byte offset to start reading account data"`
	DataSliceLength *uint64    `json:"data_slice_length,omitempty" jsonschema_description:"Number of bytes to return"`
	Commitment      Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type MultipleAccountsResponse struct {
	Envelope
	Context *Context   `json:"context,omitempty"`
	Value   []*Account `json:"value,omitzero"`
}

var getMultipleAccountsOp = operation[MultipleAccountsResponse]{
	method: "getMultipleAccounts",
	action: "get multiple accounts",
	decode: func(raw json.RawMessage, out *MultipleAccountsResponse) error {
		var res contextual[[]*Account]
		if err := unmarshalResult(raw, &res); err != nil {
			return err
		}
		if res.Value == nil {
			return errMissingValue
		}
		out.Context = res.Context
		out.Value = res.Value
		return nil
	},
}

func (s *Service) GetMultipleAccounts(ctx context.Context, args MultipleAccountsArgs) *MultipleAccountsResponse {
	opts := options{}.str("encoding", defaultString(args.Encoding, DefaultMultipleAccountsEncoding))
	if ds := dataSlice(args.DataSliceOffset, args.DataSliceLength); ds != nil {
		opts.set("dataSlice", ds)
	}
	opts.commitment(args.Commitment)
	return invoke(ctx, s.caller, getMultipleAccountsOp, params{args.Addresses}.config(opts))
}

// getProgramAccounts

type MemcmpFilter struct {
	Offset   uint64 `json:"offset"`
	Bytes    string `json:"bytes" validate:"required"`
	Encoding string `json:"encoding,omitempty" validate:"omitempty,oneof=base58 base64"`
}

// ProgramFilter holds exactly one of memcmp or dataSize.
type ProgramFilter struct {
	Memcmp   *MemcmpFilter `json:"memcmp,omitempty" validate:"required_without=DataSize,excluded_with=DataSize"`
	DataSize *uint64       `json:"dataSize,omitempty" validate:"required_without=Memcmp"`
}

type ProgramAccountsArgs struct {
	ProgramID       string          `json:"program_id" validate:"required,solana_address" jsonschema_description:"Program address, as base-58 encoded string"`
	Encoding        string          `json:"encoding,omitempty" validate:"omitempty,oneof=base58 base64 base64+zstd jsonParsed" jsonschema:"enum=base58,enum=base64,enum=base64+zstd,enum=jsonParsed" jsonschema_description:"Encoding format for Account data. Defaults to base64"`
	DataSliceOffset *uint64         `json:"data_slice_offset,omitempty" jsonschema_description:"Byte offset to start reading account data"`
	DataSliceLength *uint64         `json:"data_slice_length,omitempty" jsonschema_description:"Number of bytes to return"`
	Filters         []ProgramFilter `json:"filters,omitempty" validate:"max=4,dive" jsonschema_description:"Up to 4 memcmp or dataSize filters; an account must match all of them"`
	WithContext     bool            `json:"with_context,omitempty" jsonschema_description:"Wrap the result in an RPC response context"`
	Commitment      Commitment      `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type ProgramAccount struct {
	Pubkey  string  `json:"pubkey"`
	Account Account `json:"account"`
}

type ProgramAccountsResponse struct {
	Envelope
	Accounts []ProgramAccount `json:"accounts,omitzero"`
	Context  *Context         `json:"context,omitempty"`
}

var getProgramAccountsOp = operation[ProgramAccountsResponse]{
	method: "getProgramAccounts",
	action: "get program accounts",
	decode: func(raw json.RawMessage, out *ProgramAccountsResponse) error {
		if strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
			var res contextual[[]ProgramAccount]
			if err := unmarshalResult(raw, &res); err != nil {
				return err
			}
			if res.Value == nil {
				return errMissingValue
			}
			out.Context = res.Context
			out.Accounts = nonNil(res.Value)
			return nil
		}
		var accounts []ProgramAccount
		if err := unmarshalResult(raw, &accounts); err != nil {
			return err
		}
		out.Accounts = nonNil(accounts)
		return nil
	},
}

func (s *Service) GetProgramAccounts(ctx context.Context, args ProgramAccountsArgs) *ProgramAccountsResponse {
	opts := options{}.str("encoding", defaultString(args.Encoding, DefaultMultipleAccountsEncoding))
	if ds := dataSlice(args.DataSliceOffset, args.DataSliceLength); ds != nil {
		opts.set("dataSlice", ds)
	}
	if len(args.Filters) > 0 {
		opts.set("filters", args.Filters)
	}
	if args.WithContext {
		opts.set("withContext", true)
	}
	opts.commitment(args.Commitment)
	return invoke(ctx, s.caller, getProgramAccountsOp, params{args.ProgramID}.config(opts))
}

// getLargestAccounts

type LargestAccountsArgs struct {
	Filter     string     `json:"filter,omitempty" validate:"omitempty,oneof=circulating nonCirculating" jsonschema:"enum=circulating,enum=nonCirculating" jsonschema_description:"Filter by account type: 'circulating' or 'nonCirculating'"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type LargeAccount struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
}

type LargestAccountsResponse struct {
	Envelope
	Accounts []LargeAccount `json:"accounts,omitzero"`
}

var getLargestAccountsOp = operation[LargestAccountsResponse]{
	method: "getLargestAccounts",
	action: "get largest accounts",
	decode: func(raw json.RawMessage, out *LargestAccountsResponse) error {
		var res contextual[[]LargeAccount]
		if err := unmarshalResult(raw, &res); err != nil {
			return err
		}
		if res.Value == nil {
			return errMissingValue
		}
		out.Accounts = res.Value
		return nil
	},
}

func (s *Service) GetLargestAccounts(ctx context.Context, args LargestAccountsArgs) *LargestAccountsResponse {
	opts := options{}.str("filter", args.Filter).commitment(args.Commitment)
	return invoke(ctx, s.caller, getLargestAccountsOp, params{}.config(opts))
}

// getMinimumBalanceForRentExemption

type RentExemptionArgs struct {
	DataSize   uint64     `json:"data_size" jsonschema_description:"Size of data in bytes"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type RentExemptionResponse struct {
	Envelope
	Lamports *uint64 `json:"lamports,omitempty"`
}

var getMinimumBalanceForRentExemptionOp = operation[RentExemptionResponse]{
	method: "getMinimumBalanceForRentExemption",
	action: "get minimum balance for rent exemption",
	decode: field(func(out *RentExemptionResponse) **uint64 { return &out.Lamports }),
}

func (s *Service) GetMinimumBalanceForRentExemption(ctx context.Context, args RentExemptionArgs) *RentExemptionResponse {
	p := params{args.DataSize}.config(options{}.commitment(args.Commitment))
	return invoke(ctx, s.caller, getMinimumBalanceForRentExemptionOp, p)
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// nonNil keeps an empty successful list distinguishable from a missing one.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
