package solana

// SignatureStatus is one entry from getSignatureStatuses.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *int
	ConfirmationStatus string // processed | confirmed | finalized
	Err                interface{}
}

// Confirmed reports whether the transaction reached at least the
// confirmed commitment without an execution error.
func (s *SignatureStatus) Confirmed() bool {
	if s == nil || s.Err != nil {
		return false
	}
	return s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized"
}

// Failed reports whether the transaction was processed and failed.
func (s *SignatureStatus) Failed() bool {
	return s != nil && s.Err != nil
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
