package valueobjects

import (
	"errors"
	"fmt"
)

// SubscriberKind identifies which level of the billing engine a record belongs to.
type SubscriberKind string

const (
	// KindTenant bills an academy for using the platform.
	KindTenant SubscriberKind = "tenant"
	// KindMember bills a member of an academy.
	KindMember SubscriberKind = "member"
)

func (k SubscriberKind) String() string {
	return string(k)
}

func (k SubscriberKind) IsValid() bool {
	return k == KindTenant || k == KindMember
}

var (
	ErrInvalidScope = errors.New("invalid billing scope")
)

// Scope is the mandatory tenant scope of every ledger operation.
// Platform contracts live in {tenant, 0}; member enrollments in {member, academyID}.
type Scope struct {
	Kind     SubscriberKind
	TenantID uint
}

// PlatformScope returns the scope of platform-level contracts.
func PlatformScope() Scope {
	return Scope{Kind: KindTenant}
}

// AcademyScope returns the scope of an academy's member enrollments.
func AcademyScope(academyID uint) Scope {
	return Scope{Kind: KindMember, TenantID: academyID}
}

// NewScope validates a kind/tenant pair.
func NewScope(kind SubscriberKind, tenantID uint) (Scope, error) {
	s := Scope{Kind: kind, TenantID: tenantID}
	if err := s.Validate(); err != nil {
		return Scope{}, err
	}
	return s, nil
}

// Validate rejects the zero scope and member scopes without an academy.
func (s Scope) Validate() error {
	switch s.Kind {
	case KindTenant:
		if s.TenantID != 0 {
			return fmt.Errorf("%w: platform scope cannot carry a tenant id", ErrInvalidScope)
		}
		return nil
	case KindMember:
		if s.TenantID == 0 {
			return fmt.Errorf("%w: member scope requires an academy id", ErrInvalidScope)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown subscriber kind %q", ErrInvalidScope, s.Kind)
	}
}

func (s Scope) IsPlatform() bool {
	return s.Kind == KindTenant
}

// OpenKey is the uniqueness key held by a subscriber's non-terminal subscription.
func (s Scope) OpenKey(subscriberID uint) string {
	return fmt.Sprintf("%s:%d:%d", s.Kind, s.TenantID, subscriberID)
}

// LockKey names the per-subscriber mutex guarding ledger mutations.
func (s Scope) LockKey(subscriberID uint) string {
	return "billing:subscriber:" + s.OpenKey(subscriberID)
}

func (s Scope) String() string {
	if s.IsPlatform() {
		return "platform"
	}
	return fmt.Sprintf("academy:%d", s.TenantID)
}
