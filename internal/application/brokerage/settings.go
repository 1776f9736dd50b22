package brokerage

import (
	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/finance"
)

// Settings are the business identities and policies the services depend on
type Settings struct {
	// BuyerCompanyID is the origin company whose purchase orders are cost-bearing
	BuyerCompanyID uuid.UUID
	SplitPolicy    finance.SplitPolicy
	// MailingKeywords mark a job as a mailing job when found in its notes
	MailingKeywords []string
}

// DefaultSettings returns settings with the default split policy and no buyer
func DefaultSettings() Settings {
	return Settings{
		SplitPolicy:     finance.DefaultSplitPolicy(),
		MailingKeywords: []string{"mailing", "mail drop", "eddm", "presort", "postage", "usps"},
	}
}
