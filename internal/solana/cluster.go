package solana

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fystack/solana-mcp/internal/rpc"
)

// getClusterNodes

type ClusterNode struct {
	Pubkey       string  `json:"pubkey"`
	Gossip       *string `json:"gossip,omitempty"`
	TPU          *string `json:"tpu,omitempty"`
	RPC          *string `json:"rpc,omitempty"`
	Version      *string `json:"version,omitempty"`
	FeatureSet   *uint32 `json:"featureSet,omitempty"`
	ShredVersion *uint16 `json:"shredVersion,omitempty"`
}

type ClusterNodesResponse struct {
	Envelope
	Nodes []ClusterNode `json:"nodes,omitzero"`
}

var getClusterNodesOp = operation[ClusterNodesResponse]{
	method: "getClusterNodes",
	action: "get cluster nodes",
	decode: func(raw json.RawMessage, out *ClusterNodesResponse) error {
		var nodes []ClusterNode
		if err := unmarshalResult(raw, &nodes); err != nil {
			return err
		}
		out.Nodes = nonNil(nodes)
		return nil
	},
}

func (s *Service) GetClusterNodes(ctx context.Context) *ClusterNodesResponse {
	return invoke(ctx, s.caller, getClusterNodesOp, params{})
}

// getEpochInfo

type EpochInfo struct {
	AbsoluteSlot     uint64  `json:"absoluteSlot"`
	BlockHeight      uint64  `json:"blockHeight"`
	Epoch            uint64  `json:"epoch"`
	SlotIndex        uint64  `json:"slotIndex"`
	SlotsInEpoch     uint64  `json:"slotsInEpoch"`
	TransactionCount *uint64 `json:"transactionCount,omitempty"`
}

type EpochInfoResponse struct {
	Envelope
	Info *EpochInfo `json:"info,omitempty"`
}

var getEpochInfoOp = operation[EpochInfoResponse]{
	method: "getEpochInfo",
	action: "get epoch info",
	decode: field(func(out *EpochInfoResponse) **EpochInfo { return &out.Info }),
}

func (s *Service) GetEpochInfo(ctx context.Context, args CommitmentArgs) *EpochInfoResponse {
	return invoke(ctx, s.caller, getEpochInfoOp, params{}.config(options{}.commitment(args.Commitment)))
}

// getEpochSchedule

type EpochSchedule struct {
	SlotsPerEpoch            uint64 `json:"slotsPerEpoch"`
	LeaderScheduleSlotOffset uint64 `json:"leaderScheduleSlotOffset"`
	Warmup                   bool   `json:"warmup"`
	FirstNormalEpoch         uint64 `json:"firstNormalEpoch"`
	FirstNormalSlot          uint64 `json:"firstNormalSlot"`
}

type EpochScheduleResponse struct {
	Envelope
	Schedule *EpochSchedule `json:"schedule,omitempty"`
}

var getEpochScheduleOp = operation[EpochScheduleResponse]{
	method: "getEpochSchedule",
	action: "get epoch schedule",
	decode: field(func(out *EpochScheduleResponse) **EpochSchedule { return &out.Schedule }),
}

func (s *Service) GetEpochSchedule(ctx context.Context) *EpochScheduleResponse {
	return invoke(ctx, s.caller, getEpochScheduleOp, params{})
}

// getGenesisHash

type GenesisHashResponse struct {
	Envelope
	GenesisHash *string `json:"genesisHash,omitempty"`
}

var getGenesisHashOp = operation[GenesisHashResponse]{
	method: "getGenesisHash",
	action: "get genesis hash",
	decode: field(func(out *GenesisHashResponse) **string { return &out.GenesisHash }),
}

func (s *Service) GetGenesisHash(ctx context.Context) *GenesisHashResponse {
	return invoke(ctx, s.caller, getGenesisHashOp, params{})
}

// getHealth

const unhealthyMessage = "Node is unhealthy"

// IsUnhealthyError reports whether a getHealth RPC error means the node
// answered but is behind, as opposed to the call itself failing. Nodes only
// signal this through the message text.
func IsUnhealthyError(rpcErr *rpc.RPCError) bool {
	return rpcErr != nil && strings.Contains(rpcErr.Message, unhealthyMessage)
}

type HealthResponse struct {
	Envelope
	Healthy *bool `json:"healthy,omitempty"`
}

var getHealthOp = operation[HealthResponse]{
	method: "getHealth",
	action: "get health",
	decode: func(json.RawMessage, *HealthResponse) error { return nil },
	onRPCError: func(rpcErr *rpc.RPCError, out *HealthResponse) bool {
		if !IsUnhealthyError(rpcErr) {
			return false
		}
		healthy := false
		out.Status = StatusSuccess
		out.Healthy = &healthy
		out.Message = rpcErr.Message
		return true
	},
}

func (s *Service) GetHealth(ctx context.Context) *HealthResponse {
	resp := invoke(ctx, s.caller, getHealthOp, params{})
	if resp.Succeeded() && resp.Healthy == nil {
		healthy := true
		resp.Healthy = &healthy
	}
	return resp
}

// getHighestSnapshotSlot

type SnapshotSlots struct {
	Full        uint64  `json:"full"`
	Incremental *uint64 `json:"incremental,omitempty"`
}

type HighestSnapshotSlotResponse struct {
	Envelope
	SnapshotSlots *SnapshotSlots `json:"snapshotSlots,omitempty"`
}

var getHighestSnapshotSlotOp = operation[HighestSnapshotSlotResponse]{
	method: "getHighestSnapshotSlot",
	action: "get highest snapshot slot",
	decode: field(func(out *HighestSnapshotSlotResponse) **SnapshotSlots { return &out.SnapshotSlots }),
}

func (s *Service) GetHighestSnapshotSlot(ctx context.Context) *HighestSnapshotSlotResponse {
	return invoke(ctx, s.caller, getHighestSnapshotSlotOp, params{})
}

// getIdentity

type Identity struct {
	Identity string `json:"identity"`
}

type IdentityResponse struct {
	Envelope
	Identity *Identity `json:"identity,omitempty"`
}

var getIdentityOp = operation[IdentityResponse]{
	method: "getIdentity",
	action: "get identity",
	decode: field(func(out *IdentityResponse) **Identity { return &out.Identity }),
}

func (s *Service) GetIdentity(ctx context.Context) *IdentityResponse {
	return invoke(ctx, s.caller, getIdentityOp, params{})
}

// getLeaderSchedule

type LeaderScheduleArgs struct {
	Slot       *uint64    `json:"slot,omitempty" jsonschema_description:"Slot to get leader schedule for (defaults to current slot)"`
	Identity   string     `json:"identity,omitempty" validate:"omitempty,solana_address" jsonschema_description:"Filter results for this validator identity (base-58 encoded)"`
	Commitment Commitment `json:"commitment,omitempty" validate:"omitempty,oneof=processed confirmed finalized" jsonschema:"enum=processed,enum=confirmed,enum=finalized" jsonschema_description:"The level of commitment (processed, confirmed, finalized)"`
}

type LeaderScheduleResponse struct {
	Envelope
	// Schedule maps validator identities to slot indices relative to the
	// first slot of the epoch.
	Schedule map[string][]uint64 `json:"schedule,omitzero"`
}

var getLeaderScheduleOp = operation[LeaderScheduleResponse]{
	method: "getLeaderSchedule",
	action: "get leader schedule",
	decode: func(raw json.RawMessage, out *LeaderScheduleResponse) error {
		if rpc.IsNull(raw) {
			out.Message = "No leader schedule found for the given parameters"
			return nil
		}
		var schedule map[string][]uint64
		if err := unmarshalResult(raw, &schedule); err != nil {
			return err
		}
		out.Schedule = schedule
		if out.Schedule == nil {
			out.Schedule = map[string][]uint64{}
		}
		return nil
	},
}

func (s *Service) GetLeaderSchedule(ctx context.Context, args LeaderScheduleArgs) *LeaderScheduleResponse {
	opts := options{}.str("identity", args.Identity).commitment(args.Commitment)
	p := optional(params{}, args.Slot, opts).config(opts)
	return invoke(ctx, s.caller, getLeaderScheduleOp, p)
}

// getMaxRetransmitSlot / getMaxShredInsertSlot

type MaxRetransmitSlotResponse struct {
	Envelope
	MaxRetransmitSlot *uint64 `json:"maxRetransmitSlot,omitempty"`
}

var getMaxRetransmitSlotOp = operation[MaxRetransmitSlotResponse]{
	method: "getMaxRetransmitSlot",
	action: "get max retransmit slot",
	decode: field(func(out *MaxRetransmitSlotResponse) **uint64 { return &out.MaxRetransmitSlot }),
}

func (s *Service) GetMaxRetransmitSlot(ctx context.Context) *MaxRetransmitSlotResponse {
	return invoke(ctx, s.caller, getMaxRetransmitSlotOp, params{})
}

type MaxShredInsertSlotResponse struct {
	Envelope
	MaxShredInsertSlot *uint64 `json:"maxShredInsertSlot,omitempty"`
}

var getMaxShredInsertSlotOp = operation[MaxShredInsertSlotResponse]{
	method: "getMaxShredInsertSlot",
	action: "get max shred insert slot",
	decode: field(func(out *MaxShredInsertSlotResponse) **uint64 { return &out.MaxShredInsertSlot }),
}

func (s *Service) GetMaxShredInsertSlot(ctx context.Context) *MaxShredInsertSlotResponse {
	return invoke(ctx, s.caller, getMaxShredInsertSlotOp, params{})
}

// getRecentPerformanceSamples

const MaxPerformanceSamples = 720

type PerformanceSamplesArgs struct {
	Limit *uint16 `json:"limit,omitempty" validate:"omitempty,max=720" jsonschema_description:"Number of samples to return (maximum 720)"`
}

type PerformanceSample struct {
	Slot                   uint64  `json:"slot"`
	NumTransactions        uint64  `json:"numTransactions"`
	NumSlots               uint64  `json:"numSlots"`
	SamplePeriodSecs       uint16  `json:"samplePeriodSecs"`
	NumNonVoteTransactions *uint64 `json:"numNonVoteTransactions,omitempty"`
}

type PerformanceSamplesResponse struct {
	Envelope
	Samples []PerformanceSample `json:"samples,omitzero"`
}

var getRecentPerformanceSamplesOp = operation[PerformanceSamplesResponse]{
	method: "getRecentPerformanceSamples",
	action: "get recent performance samples",
	decode: func(raw json.RawMessage, out *PerformanceSamplesResponse) error {
		var samples []PerformanceSample
		if err := unmarshalResult(raw, &samples); err != nil {
			return err
		}
		out.Samples = nonNil(samples)
		return nil
	},
}

func (s *Service) GetRecentPerformanceSamples(ctx context.Context, args PerformanceSamplesArgs) *PerformanceSamplesResponse {
	return invoke(ctx, s.caller, getRecentPerformanceSamplesOp, optional(params{}, args.Limit, nil))
}

// getRecentPrioritizationFees

const MaxPrioritizationFeeAddresses = 128

type PrioritizationFeesArgs struct {
	Addresses []string `json:"addresses,omitempty" validate:"max=128,dive,solana_address" jsonschema_description:"Up to 128 account addresses; fees are reported for transactions that lock all of them as writable"`
}

type PrioritizationFee struct {
	Slot              uint64 `json:"slot"`
	PrioritizationFee uint64 `json:"prioritizationFee"`
}

type PrioritizationFeesResponse struct {
	Envelope
	Fees []PrioritizationFee `json:"fees,omitzero"`
}

var getRecentPrioritizationFeesOp = operation[PrioritizationFeesResponse]{
	method: "getRecentPrioritizationFees",
	action: "get recent prioritization fees",
	decode: func(raw json.RawMessage, out *PrioritizationFeesResponse) error {
		var fees []PrioritizationFee
		if err := unmarshalResult(raw, &fees); err != nil {
			return err
		}
		out.Fees = nonNil(fees)
		return nil
	},
}

func (s *Service) GetRecentPrioritizationFees(ctx context.Context, args PrioritizationFeesArgs) *PrioritizationFeesResponse {
	p := params{}
	if len(args.Addresses) > 0 {
		p = append(p, args.Addresses)
	}
	return invoke(ctx, s.caller, getRecentPrioritizationFeesOp, p)
}
