package solana

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fystack/solana-mcp/internal/rpc"
)

const (
	DefaultBlockEncoding           = "json"
	DefaultBlockTransactionDetails = "full"
	MaxBlocksLimit                 = 500_000
)

// SlotArgs is shared by queries that take a single slot.
type SlotArgs struct {
	Slot uint64 `json:"slot" jsonschema_description:"The slot to query"`
}

// CommitmentArgs is shared by queries whose only option is the commitment.
type CommitmentArgs struct {
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

// getBlock

type BlockArgs struct {
	Slot                           uint64     `json:"slot" jsonschema_description:"The slot of the block to query"`
	Encoding                       string     `json:"encoding,omitempty" validate:"omitempty,oneof=json jsonParsed base58 base64" jsonschema:"enum=json,enum=jsonParsed,enum=base58,enum=base64" jsonschema_description:"Encoding format for transaction data (json, jsonParsed, base58, base64). Defaults to json"`
	TransactionDetails             string     `json:"transaction_details,omitempty" validate:"omitempty,oneof=full accounts signatures none" jsonschema:"enum=full,enum=accounts,enum=signatures,enum=none" jsonschema_description:"Level of transaction detail to return (full, accounts, signatures, none). Defaults to full"`
	Rewards                        *bool      `json:"rewards,omitempty" jsonschema_description:"Whether to include rewards in the response. Defaults to true"`
	MaxSupportedTransactionVersion *uint8     `json:"max_supported_transaction_version,omitempty" jsonschema_description:"Filter for max transaction version"`
	Commitment                     Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=confirmed finalized" jsonschema:"enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (confirmed, finalized)"`
}

type Reward struct {
	Pubkey      string  `json:"pubkey"`
	Lamports    int64   `json:"lamports"`
	PostBalance uint64  `json:"postBalance"`
	RewardType  *string `json:"rewardType,omitempty"`
	Commission  *uint8  `json:"commission,omitempty"`
}

type Block struct {
	BlockHeight       *uint64 `json:"blockHeight,omitempty"`
	BlockTime         *int64  `json:"blockTime,omitempty"`
	Blockhash         string  `json:"blockhash"`
	ParentSlot        uint64  `json:"parentSlot"`
	PreviousBlockhash string  `json:"previousBlockhash"`
	// Transactions keep whatever shape the requested encoding produced.
	Transactions []json.RawMessage `json:"transactions,omitzero"`
	Signatures   []string          `json:"signatures,omitzero"`
	Rewards      []Reward          `json:"rewards,omitzero"`
}

type BlockResponse struct {
	Envelope
	*Block
}

var getBlockOp = operation[BlockResponse]{
	method: "getBlock",
	action: "get block",
	decode: func(raw json.RawMessage, out *BlockResponse) error {
		if rpc.IsNull(raw) {
			out.Message = "Block not found or not confirmed"
			return nil
		}
		var b Block
		if err := unmarshalResult(raw, &b); err != nil {
			return err
		}
		out.Block = &b
		return nil
	},
}

func (s *Service) GetBlock(ctx context.Context, args BlockArgs) *BlockResponse {
	rewards := true
	if args.Rewards != nil {
		rewards = *args.Rewards
	}
	opts := options{}.
		str("encoding", defaultString(args.Encoding, DefaultBlockEncoding)).
		str("transactionDetails", defaultString(args.TransactionDetails, DefaultBlockTransactionDetails)).
		set("rewards", rewards)
	if args.MaxSupportedTransactionVersion != nil {
		opts.set("maxSupportedTransactionVersion", *args.MaxSupportedTransactionVersion)
	}
	opts.commitment(args.Commitment)
	return invoke(ctx, s.caller, getBlockOp, params{args.Slot}.config(opts))
}

// getBlockCommitment

type BlockCommitmentResponse struct {
	Envelope
	// Commitment is null when the block is unknown to the node.
	Commitment []uint64 `json:"commitment,omitzero"`
	TotalStake *uint64  `json:"totalStake,omitempty"`
}

var getBlockCommitmentOp = operation[BlockCommitmentResponse]{
	method: "getBlockCommitment",
	action: "get block commitment",
	decode: func(raw json.RawMessage, out *BlockCommitmentResponse) error {
		var res struct {
			Commitment []uint64 `json:"commitment"`
			TotalStake *uint64  `json:"totalStake"`
		}
		if err := unmarshalResult(raw, &res); err != nil {
			return err
		}
		out.Commitment = res.Commitment
		out.TotalStake = res.TotalStake
		return nil
	},
}

func (s *Service) GetBlockCommitment(ctx context.Context, args SlotArgs) *BlockCommitmentResponse {
	return invoke(ctx, s.caller, getBlockCommitmentOp, params{args.Slot})
}

// getBlockHeight

type BlockHeightResponse struct {
	Envelope
	BlockHeight *uint64 `json:"blockHeight,omitempty"`
}

var getBlockHeightOp = operation[BlockHeightResponse]{
	method: "getBlockHeight",
	action: "get block height",
	decode: field(func(out *BlockHeightResponse) **uint64 { return &out.BlockHeight }),
}

func (s *Service) GetBlockHeight(ctx context.Context, args CommitmentArgs) *BlockHeightResponse {
	return invoke(ctx, s.caller, getBlockHeightOp, params{}.config(options{}.commitment(args.Commitment)))
}

// getBlockProduction

type BlockProductionArgs struct {
	Identity   string     `json:"identity,omitempty" validate:"omitempty,solana_address" jsonschema_description:"Only return results for this validator identity (base-58 encoded)"`
	FirstSlot  *uint64    `json:"first_slot,omitempty" jsonschema_description:"Start slot of the block production range (inclusive). Used only together with last_slot"`
	LastSlot   *uint64    `json:"last_slot,omitempty" jsonschema_description:"End slot of the block production range (inclusive). Used only together with first_slot"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type SlotRange struct {
	FirstSlot uint64 `json:"firstSlot"`
	LastSlot  uint64 `json:"lastSlot"`
}

type ProductionEntry struct {
	LeaderSlots    uint64 `json:"leaderSlots"`
	BlocksProduced uint64 `json:"blocksProduced"`
}

type BlockProductionResponse struct {
	Envelope
	ByIdentity map[string]ProductionEntry `json:"byIdentity,omitzero"`
	Range      *SlotRange                 `json:"range,omitempty"`
}

var getBlockProductionOp = operation[BlockProductionResponse]{
	method: "getBlockProduction",
	action: "get block production",
	decode: func(raw json.RawMessage, out *BlockProductionResponse) error {
		var res contextual[*struct {
			// [leader slots, blocks produced]
			ByIdentity map[string][]uint64 `json:"byIdentity"`
			Range      *SlotRange          `json:"range"`
		}]
		if err := unmarshalResult(raw, &res); err != nil {
			return err
		}
		if res.Value == nil || res.Value.ByIdentity == nil {
			return errMissingValue
		}
		byIdentity := make(map[string]ProductionEntry, len(res.Value.ByIdentity))
		for identity, pair := range res.Value.ByIdentity {
			if len(pair) != 2 {
				return fmt.Errorf("byIdentity %s: want [leaderSlots, blocksProduced], got %d values", identity, len(pair))
			}
			byIdentity[identity] = ProductionEntry{LeaderSlots: pair[0], BlocksProduced: pair[1]}
		}
		out.ByIdentity = byIdentity
		out.Range = res.Value.Range
		return nil
	},
}

func (s *Service) GetBlockProduction(ctx context.Context, args BlockProductionArgs) *BlockProductionResponse {
	opts := options{}.str("identity", args.Identity)
	if args.FirstSlot != nil && args.LastSlot != nil {
		opts.set("range", SlotRange{FirstSlot: *args.FirstSlot, LastSlot: *args.LastSlot})
	}
	opts.commitment(args.Commitment)
	return invoke(ctx, s.caller, getBlockProductionOp, params{}.config(opts))
}

// getBlocks / getBlocksWithLimit

type BlocksArgs struct {
	StartSlot  uint64     `json:"start_slot" jsonschema_description:"Start slot (inclusive)"`
	EndSlot    *uint64    `json:"end_slot,omitempty" jsonschema_description:"End slot (inclusive), if not provided, latest block will be used"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=confirmed finalized" jsonschema:"enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (confirmed, finalized)"`
}

type BlocksWithLimitArgs struct {
	StartSlot  uint64     `json:"start_slot" jsonschema_description:"Start slot (inclusive)"`
	Limit      uint64     `json:"limit" validate:"max=500000" jsonschema_description:"Maximum number of blocks to return (must be no more than 500,000)"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=confirmed finalized" jsonschema:"enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (confirmed, finalized)"`
}

type BlocksResponse struct {
	Envelope
	Blocks []uint64 `json:"blocks,omitzero"`
}

func decodeBlocks(raw json.RawMessage, out *BlocksResponse) error {
	var blocks []uint64
	if err := unmarshalResult(raw, &blocks); err != nil {
		return err
	}
	out.Blocks = nonNil(blocks)
	return nil
}

var getBlocksOp = operation[BlocksResponse]{
	method: "getBlocks",
	action: "get blocks",
	decode: decodeBlocks,
}

var getBlocksWithLimitOp = operation[BlocksResponse]{
	method: "getBlocksWithLimit",
	action: "get blocks with limit",
	decode: decodeBlocks,
}

func (s *Service) GetBlocks(ctx context.Context, args BlocksArgs) *BlocksResponse {
	opts := options{}.commitment(args.Commitment)
	p := optional(params{args.StartSlot}, args.EndSlot, opts).config(opts)
	return invoke(ctx, s.caller, getBlocksOp, p)
}

func (s *Service) GetBlocksWithLimit(ctx context.Context, args BlocksWithLimitArgs) *BlocksResponse {
	p := params{args.StartSlot, args.Limit}.config(options{}.commitment(args.Commitment))
	return invoke(ctx, s.caller, getBlocksWithLimitOp, p)
}

// getBlockTime

type BlockTimeResponse struct {
	Envelope
	BlockTime *int64 `json:"blockTime,omitempty"`
}

var getBlockTimeOp = operation[BlockTimeResponse]{
	method: "getBlockTime",
	action: "get block time",
	decode: func(raw json.RawMessage, out *BlockTimeResponse) error {
		if rpc.IsNull(raw) {
			out.Message = "Block not found or not confirmed"
			return nil
		}
		return field(func(out *BlockTimeResponse) **int64 { return &out.BlockTime })(raw, out)
	},
}

func (s *Service) GetBlockTime(ctx context.Context, args SlotArgs) *BlockTimeResponse {
	return invoke(ctx, s.caller, getBlockTimeOp, params{args.Slot})
}

// getFirstAvailableBlock

type FirstAvailableBlockResponse struct {
	Envelope
	FirstAvailableBlock *uint64 `json:"firstAvailableBlock,omitempty"`
}

var getFirstAvailableBlockOp = operation[FirstAvailableBlockResponse]{
	method: "getFirstAvailableBlock",
	action: "get first available block",
	decode: field(func(out *FirstAvailableBlockResponse) **uint64 { return &out.FirstAvailableBlock }),
}

func (s *Service) GetFirstAvailableBlock(ctx context.Context) *FirstAvailableBlockResponse {
	return invoke(ctx, s.caller, getFirstAvailableBlockOp, params{})
}

// getLatestBlockhash

type Blockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

type LatestBlockhashResponse struct {
	Envelope
	Value *Blockhash `json:"value,omitempty"`
}

var getLatestBlockhashOp = operation[LatestBlockhashResponse]{
	method: "getLatestBlockhash",
	action: "get latest blockhash",
	decode: func(raw json.RawMessage, out *LatestBlockhashResponse) error {
		var res contextual[*Blockhash]
		if err := unmarshalResult(raw, &res); err != nil {
			return err
		}
		if res.Value == nil {
			return errMissingValue
		}
		out.Value = res.Value
		return nil
	},
}

func (s *Service) GetLatestBlockhash(ctx context.Context, args CommitmentArgs) *LatestBlockhashResponse {
	return invoke(ctx, s.caller, getLatestBlockhashOp, params{}.config(options{}.commitment(args.Commitment)))
}

// getFeeForMessage

type FeeForMessageArgs struct {
	Message    string     `json:"message" validate:"required,base64" jsonschema_description:"Base-64 encoded message to get the fee for"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type FeeForMessageResponse struct {
	Envelope
	Fee *uint64 `json:"fee,omitempty"`
}

var getFeeForMessageOp = operation[FeeForMessageResponse]{
	method: "getFeeForMessage",
	action: "get fee for message",
	decode: func(raw json.RawMessage, out *FeeForMessageResponse) error {
		var res contextual[*uint64]
		if err := unmarshalResult(raw, &res); err != nil {
			return err
		}
		if res.Value == nil {
			out.Message = "Blockhash in the message has expired or is invalid"
			return nil
		}
		out.Fee = res.Value
		return nil
	},
}

func (s *Service) GetFeeForMessage(ctx context.Context, args FeeForMessageArgs) *FeeForMessageResponse {
	p := params{args.Message}.config(options{}.commitment(args.Commitment))
	return invoke(ctx, s.caller, getFeeForMessageOp, p)
}
