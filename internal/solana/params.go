package solana

// Commitment is the confirmation level a query is evaluated at.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// DataSlice limits returned account data.
type DataSlice struct {
	Offset uint64 `json:"offset"`
	Length uint64 `json:"length"`
}

// options is the trailing config object of a JSON-RPC call. Keys are only
// added for values that were actually set.
type options map[string]any

func (o options) set(key string, v any) options {
	o[key] = v
	return o
}

func (o options) str(key, v string) options {
	if v != "" {
		o[key] = v
	}
	return o
}

func (o options) commitment(c Commitment) options {
	return o.str("commitment", string(c))
}

// params is a positional JSON-RPC parameter list.
type params []any

// config appends opts as the last positional argument unless it is empty.
func (p params) config(opts options) params {
	if len(opts) == 0 {
		return p
	}
	return append(p, opts)
}

// optional appends *v when present. When it is absent but opts will
// follow, a null placeholder keeps the positions of later arguments.
func optional[T any](p params, v *T, opts options) params {
	switch {
	case v != nil:
		return append(p, *v)
	case len(opts) > 0:
		return append(p, nil)
	default:
		return p
	}
}

func dataSlice(offset, length *uint64) *DataSlice {
	if offset == nil || length == nil {
		return nil
	}
	return &DataSlice{Offset: *offset, Length: *length}
}
