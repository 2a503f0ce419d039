package enums

import "fmt"

// OriginatorKind tags the entity recorded as the cause of a store credit
// ledger entry. Resolving the kind+id pair to a concrete record is the
// caller's responsibility.
type OriginatorKind string

const (
	OriginatorKindUser      OriginatorKind = "user"
	OriginatorKindOrder     OriginatorKind = "order"
	OriginatorKindRefund    OriginatorKind = "refund"
	OriginatorKindAdminUser OriginatorKind = "admin_user"
)

var validOriginatorKinds = []OriginatorKind{
	OriginatorKindUser,
	OriginatorKindOrder,
	OriginatorKindRefund,
	OriginatorKindAdminUser,
}

// String implements fmt.Stringer.
func (k OriginatorKind) String() string {
	return string(k)
}

// IsValid reports whether the kind matches a recognized originator.
func (k OriginatorKind) IsValid() bool {
	for _, candidate := range validOriginatorKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseOriginatorKind converts raw input into an OriginatorKind.
func ParseOriginatorKind(value string) (OriginatorKind, error) {
	for _, candidate := range validOriginatorKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid originator kind %q", value)
}
