package model

// ResultKind is the machine-readable outcome of a verification.
type ResultKind string

const (
	ResultSuccess      ResultKind = "SUCCESS"
	ResultNotFound     ResultKind = "NOT_FOUND"
	ResultAlreadyUsed  ResultKind = "ALREADY_USED"
	ResultHashMismatch ResultKind = "HASH_MISMATCH"
)

// VerifyResult is returned for every verification, valid or not. Record is
// set for SUCCESS and ALREADY_USED so callers can display it.
type VerifyResult struct {
	Valid  bool       `json:"valid"`
	Kind   ResultKind `json:"code"`
	Record *KeyRecord `json:"data,omitempty"`
}
