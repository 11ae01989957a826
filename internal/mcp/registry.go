package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/fystack/solana-mcp/internal/rpc"
	"github.com/fystack/solana-mcp/internal/solana"
)

var ErrUnknownTool = errors.New("unknown tool")

// ArgumentError means the tool arguments could not be decoded or failed
// validation. The call never reached the node.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// NoArgs is the argument type of tools that take no input.
type NoArgs struct{}

var (
	reflector = &jsonschema.Reflector{DoNotReference: true}
	validate  = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	// report argument names the way the client sent them
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := solana.RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// Tool is one callable operation exposed to MCP clients.
type Tool struct {
	Name        string
	Description string
	// Method is the Solana JSON-RPC method behind the tool.
	Method      string
	InputSchema json.RawMessage

	required []string
	call     func(ctx context.Context, args json.RawMessage) (solana.Response, error)
}

func (t *Tool) Descriptor() ToolDescriptor {
	return ToolDescriptor{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
}

// Call decodes and validates args, then runs the operation. The returned
// error is always an *ArgumentError; node failures are in the response.
func (t *Tool) Call(ctx context.Context, args json.RawMessage) (solana.Response, error) {
	return t.call(ctx, args)
}

func newTool[A any, R solana.Response](name, method, description string, fn func(context.Context, A) R) *Tool {
	schema, required := reflectSchema[A]()
	t := &Tool{
		Name:        name,
		Description: description,
		Method:      method,
		InputSchema: schema,
		required:    required,
	}
	t.call = func(ctx context.Context, raw json.RawMessage) (solana.Response, error) {
		var args A
		if err := decodeArguments(raw, t.required, &args); err != nil {
			return nil, &ArgumentError{Tool: name, Err: err}
		}
		return fn(ctx, args), nil
	}
	return t
}

// noArgs adapts an operation without input to the common tool signature.
func noArgs[R solana.Response](fn func(context.Context) R) func(context.Context, NoArgs) R {
	return func(ctx context.Context, _ NoArgs) R { return fn(ctx) }
}

// reflectSchema builds a self-contained object schema for A and returns it
// together with its required property names.
func reflectSchema[A any]() (json.RawMessage, []string) {
	raw, err := json.Marshal(reflector.Reflect(new(A)))
	if err != nil {
		panic(fmt.Sprintf("reflect schema for %T: %v", *new(A), err))
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		panic(fmt.Sprintf("reflect schema for %T: %v", *new(A), err))
	}
	delete(doc, "$schema")
	delete(doc, "$ref")
	delete(doc, "definitions")
	doc["type"] = "object"
	if _, ok := doc["properties"]; !ok {
		doc["properties"] = map[string]any{}
	}

	var required []string
	if list, ok := doc["required"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				required = append(required, s)
			}
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("reflect schema for %T: %v", *new(A), err))
	}
	return out, required
}

func decodeArguments(raw json.RawMessage, required []string, dst any) error {
	if rpc.IsNull(raw) {
		raw = json.RawMessage("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return errors.New("arguments must be a JSON object")
	}
	var missing []string
	for _, name := range required {
		if v, ok := fields[name]; !ok || rpc.IsNull(v) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required argument(s): %s", strings.Join(missing, ", "))
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationError(verrs)
		}
		return err
	}
	return nil
}

func validationError(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		// drop the Go type name in front
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		msg := fmt.Sprintf("%s failed %q", path, fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s failed %q (%s)", path, fe.Tag(), fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Registry holds the tools in the order they are listed to clients.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
}

func NewRegistry(svc *solana.Service) *Registry {
	r := &Registry{byName: make(map[string]*Tool)}
	r.register(
		newTool("get_balance", "getBalance",
			"Get the SOL balance for a Solana wallet address.",
			svc.GetBalance),
		newTool("get_account_info", "getAccountInfo",
			"Get all information associated with a Solana account by its address.",
			svc.GetAccountInfo),
		newTool("get_block", "getBlock",
			"Get information about a confirmed block by slot number.",
			svc.GetBlock),
		newTool("get_block_commitment", "getBlockCommitment",
			"Get commitment (confirmation status) information for a block.",
			svc.GetBlockCommitment),
		newTool("get_block_height", "getBlockHeight",
			"Get the current block height of the Solana node.",
			svc.GetBlockHeight),
		newTool("get_block_production", "getBlockProduction",
			"Get recent block production information from the Solana network.",
			svc.GetBlockProduction),
		newTool("get_blocks", "getBlocks",
			"Get a list of confirmed blocks between two slots.",
			svc.GetBlocks),
		newTool("get_blocks_with_limit", "getBlocksWithLimit",
			"Get a list of confirmed blocks starting at a slot with a limit.",
			svc.GetBlocksWithLimit),
		newTool("get_block_time", "getBlockTime",
			"Get the estimated production time of a block.",
			svc.GetBlockTime),
		newTool("get_cluster_nodes", "getClusterNodes",
			"Get information about the nodes in the Solana cluster.",
			noArgs(svc.GetClusterNodes)),
		newTool("get_epoch_info", "getEpochInfo",
			"Get information about the current epoch.",
			svc.GetEpochInfo),
		newTool("get_epoch_schedule", "getEpochSchedule",
			"Get epoch schedule information from the Solana cluster.",
			noArgs(svc.GetEpochSchedule)),
		newTool("get_fee_for_message", "getFeeForMessage",
			"Get the fee in lamports for a message.",
			svc.GetFeeForMessage),
		newTool("get_first_available_block", "getFirstAvailableBlock",
			"Get the first available block in the Solana ledger.",
			noArgs(svc.GetFirstAvailableBlock)),
		newTool("get_genesis_hash", "getGenesisHash",
			"Get the genesis hash of the Solana cluster.",
			noArgs(svc.GetGenesisHash)),
		newTool("get_health", "getHealth",
			"Check the health of the connected Solana node.",
			noArgs(svc.GetHealth)),
		newTool("get_highest_snapshot_slot", "getHighestSnapshotSlot",
			"Get the highest snapshot slots available on the Solana node.",
			noArgs(svc.GetHighestSnapshotSlot)),
		newTool("get_identity", "getIdentity",
			"Get the identity public key of the current Solana node.",
			noArgs(svc.GetIdentity)),
		newTool("get_inflation_governor", "getInflationGovernor",
			"Get the inflation governor parameters from the Solana cluster.",
			svc.GetInflationGovernor),
		newTool("get_inflation_rate", "getInflationRate",
			"Get the current inflation rate of the Solana network.",
			noArgs(svc.GetInflationRate)),
		newTool("get_inflation_reward", "getInflationReward",
			"Get inflation rewards for a list of Solana accounts.",
			svc.GetInflationReward),
		newTool("get_largest_accounts", "getLargestAccounts",
			"Get the largest accounts on the Solana network.",
			svc.GetLargestAccounts),
		newTool("get_latest_blockhash", "getLatestBlockhash",
			"Get the latest blockhash",
			svc.GetLatestBlockhash),
		newTool("get_leader_schedule", "getLeaderSchedule",
			"Get the leader schedule for the current or a specific epoch",
			svc.GetLeaderSchedule),
		newTool("get_max_retransmit_slot", "getMaxRetransmitSlot",
			"Get the max slot that has been retransmitted by the node",
			noArgs(svc.GetMaxRetransmitSlot)),
		newTool("get_max_shred_insert_slot", "getMaxShredInsertSlot",
			"Get the highest slot where shreds have been inserted by the node",
			noArgs(svc.GetMaxShredInsertSlot)),
		newTool("get_minimum_balance_for_rent_exemption", "getMinimumBalanceForRentExemption",
			"Get the minimum balance required for rent exemption for a data size",
			svc.GetMinimumBalanceForRentExemption),
		newTool("get_multiple_accounts", "getMultipleAccounts",
			"Get information for a list of Solana accounts. Missing accounts are returned as null in request order.",
			svc.GetMultipleAccounts),
		newTool("get_program_accounts", "getProgramAccounts",
			"Get all accounts owned by a program, optionally filtered by data size or memory comparison.",
			svc.GetProgramAccounts),
		newTool("get_recent_performance_samples", "getRecentPerformanceSamples",
			"Get recent performance samples: number of transactions and slots per sample period.",
			svc.GetRecentPerformanceSamples),
		newTool("get_recent_prioritization_fees", "getRecentPrioritizationFees",
			"Get prioritization fees paid in recent blocks, optionally for transactions locking the given accounts.",
			svc.GetRecentPrioritizationFees),
	)
	return r
}

func (r *Registry) register(tools ...*Tool) {
	for _, t := range tools {
		if _, dup := r.byName[t.Name]; dup {
			panic("duplicate tool " + t.Name)
		}
		r.tools = append(r.tools, t)
		r.byName[t.Name] = t
	}
}

func (r *Registry) Tools() []*Tool {
	return r.tools
}

func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Call runs the named tool. It fails with ErrUnknownTool or *ArgumentError.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (solana.Response, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Call(ctx, args)
}
