package render

import (
	"errors"
	"fmt"
)

// ErrInvalidBlockMembership matches every *MembershipError.
var ErrInvalidBlockMembership = errors.New("invalid block membership")

// MembershipError reports a malformed block graph. SectionID is empty when
// the block itself is at fault.
type MembershipError struct {
	BlockID   string
	SectionID string
	Reason    string
}

func (e *MembershipError) Error() string {
	if e.SectionID == "" {
		return fmt.Sprintf("%s: block %s: %s", ErrInvalidBlockMembership, e.BlockID, e.Reason)
	}
	return fmt.Sprintf("%s: block %s section %s: %s", ErrInvalidBlockMembership, e.BlockID, e.SectionID, e.Reason)
}

func (e *MembershipError) Is(target error) bool {
	return target == ErrInvalidBlockMembership
}
