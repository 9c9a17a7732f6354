package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"golang.org/x/crypto/sha3"
)

// FunctionIDSize is the byte length of a function identifier.
const FunctionIDSize = 4

// FunctionID identifies a callable entry point. It is the first four bytes
// of the Keccak-256 digest of the entry point's declared signature.
type FunctionID [FunctionIDSize]byte

// FunctionIDFromSignature derives the identifier for a signature string such
// as "swap(poolId,denomIn,amountIn,minAmountOut)".
func FunctionIDFromSignature(sig string) FunctionID {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	var id FunctionID
	copy(id[:], h.Sum(nil)[:FunctionIDSize])
	return id
}

// FunctionIDFromBytes copies the first four bytes of bz into an identifier.
// It fails when bz is shorter than an identifier.
func FunctionIDFromBytes(bz []byte) (FunctionID, error) {
	var id FunctionID
	if len(bz) < FunctionIDSize {
		return id, fmt.Errorf("function identifier needs %d bytes, got %d", FunctionIDSize, len(bz))
	}
	copy(id[:], bz[:FunctionIDSize])
	return id, nil
}

// ParseFunctionID decodes a hex identifier, with or without a 0x prefix.
func ParseFunctionID(s string) (FunctionID, error) {
	var id FunctionID
	s = strings.TrimPrefix(s, "0x")
	bz, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid function identifier %q: %w", s, err)
	}
	if len(bz) != FunctionIDSize {
		return id, fmt.Errorf("function identifier must be %d bytes, got %d", FunctionIDSize, len(bz))
	}
	copy(id[:], bz)
	return id, nil
}

// Bytes returns the identifier as a slice.
func (id FunctionID) Bytes() []byte { return id[:] }

func (id FunctionID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalJSON encodes the identifier as its hex string.
func (id FunctionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes a hex string identifier.
func (id *FunctionID) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	parsed, err := ParseFunctionID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Route binds a function identifier to the module that implements it.
// Position is the identifier's index in the owning module's id list; it is
// maintained by the registry so removal can swap-and-pop in O(1).
type Route struct {
	Module   sdk.AccAddress
	Position uint16
}

// ModuleRoutes is one module's slice of the routing table, as reported by
// the introspection surface.
type ModuleRoutes struct {
	Module      sdk.AccAddress `json:"module"`
	FunctionIDs []FunctionID   `json:"function_ids"`
}

// CutAction tags one operation of a registry cut.
type CutAction uint8

const (
	CutAdd CutAction = iota
	CutReplace
	CutRemove
)

func (a CutAction) String() string {
	switch a {
	case CutAdd:
		return "add"
	case CutReplace:
		return "replace"
	case CutRemove:
		return "remove"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// Validate rejects action tags outside the three defined ones.
func (a CutAction) Validate() error {
	switch a {
	case CutAdd, CutReplace, CutRemove:
		return nil
	default:
		return ErrInvalidCutAction.Wrapf("action tag %d", uint8(a))
	}
}

// MarshalJSON encodes the action as its lowercase name.
func (a CutAction) MarshalJSON() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes an action name.
func (a *CutAction) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	switch s {
	case "add":
		*a = CutAdd
	case "replace":
		*a = CutReplace
	case "remove":
		*a = CutRemove
	default:
		return ErrInvalidCutAction.Wrapf("action %q", s)
	}
	return nil
}

// CutOp is one operation of a registry cut: route these identifiers to (or
// away from) this module. Remove operations carry the null module address;
// the owner is read from each identifier's current route.
type CutOp struct {
	Action      CutAction      `json:"action"`
	Module      sdk.AccAddress `json:"module"`
	FunctionIDs []FunctionID   `json:"function_ids"`
}

// OwnerRecord is the registry's ownership state. Initialized flips true
// exactly once, at the first owner assignment.
type OwnerRecord struct {
	Owner       string `json:"owner"`
	Initialized bool   `json:"initialized"`
}
