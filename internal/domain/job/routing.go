package job

import (
	"fmt"

	"github.com/printbroker/backend/internal/domain/shared"
)

// RoutingType describes which fulfillment structure applies to a job
type RoutingType string

const (
	RoutingPartnerMediated  RoutingType = "PARTNER_MEDIATED"
	RoutingDirect           RoutingType = "DIRECT"
	RoutingThirdPartyVendor RoutingType = "THIRD_PARTY_VENDOR"
)

// IsValid checks if the routing type is known
func (r RoutingType) IsValid() bool {
	switch r {
	case RoutingPartnerMediated, RoutingDirect, RoutingThirdPartyVendor:
		return true
	}
	return false
}

// IsPartnerMediated reports whether an intermediary always sits between buyer and vendor
func (r RoutingType) IsPartnerMediated() bool {
	return r == RoutingPartnerMediated
}

// String returns the string representation of RoutingType
func (r RoutingType) String() string {
	return string(r)
}

// ParseRoutingType validates a routing type from external input
func ParseRoutingType(s string) (RoutingType, error) {
	r := RoutingType(s)
	if !r.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidRoutingType, fmt.Sprintf("Unknown routing type %q", s))
	}
	return r, nil
}

// Pathway is the cached fulfillment classification of a job
type Pathway string

const (
	PathwayUnclassified Pathway = ""
	PathwayP1           Pathway = "P1" // partner-mediated, fixed workflow
	PathwayP2           Pathway = "P2" // single external vendor
	PathwayP3           Pathway = "P3" // multiple external vendors
)

// IsValid checks if the pathway is known (unclassified included)
func (p Pathway) IsValid() bool {
	switch p {
	case PathwayUnclassified, PathwayP1, PathwayP2, PathwayP3:
		return true
	}
	return false
}

// ConsistencyWarning describes stored state that needs manual review.
// Warnings are reported, never repaired automatically.
type ConsistencyWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CodePathwayRoutingMismatch flags a P1 job whose routing is not partner-mediated
const CodePathwayRoutingMismatch = "PATHWAY_ROUTING_MISMATCH"

// Classification is the outcome of ClassifyPathway
type Classification struct {
	Pathway       Pathway
	VendorCount   int
	Changed       bool
	Inconsistency *ConsistencyWarning
}

// ClassifyPathway decides the pathway from the routing type, the current pathway
// and the distinct active cost-bearing vendor count.
//
//   - partner-mediated routing is always P1, whatever the vendor count
//   - a P1 job with any other routing is left untouched and reported
//   - otherwise one vendor is P2, more than one is P3
//   - zero vendors leaves the pathway as it is
func ClassifyPathway(routing RoutingType, current Pathway, vendorCount int) Classification {
	result := Classification{Pathway: current, VendorCount: vendorCount}

	switch {
	case routing.IsPartnerMediated():
		result.Pathway = PathwayP1
	case current == PathwayP1:
		result.Inconsistency = &ConsistencyWarning{
			Code: CodePathwayRoutingMismatch,
			Message: fmt.Sprintf("Job is on pathway P1 but routing type is %s; left unchanged for manual review",
				routing),
		}
	case vendorCount == 1:
		result.Pathway = PathwayP2
	case vendorCount > 1:
		result.Pathway = PathwayP3
	}

	result.Changed = result.Pathway != current
	return result
}
