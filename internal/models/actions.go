package models

// ActionType is the literal "type" of a recommendation. Matching is
// case-sensitive.
type ActionType string

const (
	NoChange ActionType = "no_change"

	Increase ActionType = "increase"
	Decrease ActionType = "decrease"

	RaiseBid ActionType = "raise_bid"
	LowerBid ActionType = "lower_bid"

	Activate ActionType = "activate"
	Suppress ActionType = "suppress"
)

type Family string

const (
	FamilyBudget   Family = "budget"
	FamilyBid      Family = "bid"
	FamilyAudience Family = "audience"
)

// Positive and Negative return the action types that move a family up or down.
func (f Family) Positive() ActionType {
	switch f {
	case FamilyBudget:
		return Increase
	case FamilyBid:
		return RaiseBid
	case FamilyAudience:
		return Activate
	}
	return ""
}

func (f Family) Negative() ActionType {
	switch f {
	case FamilyBudget:
		return Decrease
	case FamilyBid:
		return LowerBid
	case FamilyAudience:
		return Suppress
	}
	return ""
}

type Tier string

const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

// RequiresConfirmation reports whether the change must be affirmed by hand.
// low and moderate changes are treated as already applied.
func (t Tier) RequiresConfirmation() bool { return t == TierHigh }

func (t Tier) Known() bool {
	return t == TierLow || t == TierModerate || t == TierHigh
}

type Change struct {
	Current       float64 `json:"current"`
	New           float64 `json:"new"`
	ChangeAmount  float64 `json:"change_amount,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`
	Tier          Tier    `json:"tier,omitempty"`
}

// Action is implemented by the three recommendation families.
type Action interface {
	Family() Family
	Kind() ActionType
	Why() string
	Target() ID
}

type BudgetAction struct {
	CampaignID   ID         `json:"campaign_id"`
	CampaignName string     `json:"campaign_name,omitempty"`
	Type         ActionType `json:"type"`
	Rank         int        `json:"rank,omitempty"`
	ROAS         float64    `json:"roas,omitempty"`
	Reason       string     `json:"reason"`
	BudgetChange *Change    `json:"budget_change,omitempty"`
}

func (a BudgetAction) Family() Family   { return FamilyBudget }
func (a BudgetAction) Kind() ActionType { return a.Type }
func (a BudgetAction) Why() string      { return a.Reason }
func (a BudgetAction) Target() ID       { return a.CampaignID }

type BidAction struct {
	AdGroupID ID         `json:"ad_group_id"`
	Type      ActionType `json:"type"`
	Reason    string     `json:"reason"`
	BidChange *Change    `json:"bid_change,omitempty"`
}

func (a BidAction) Family() Family   { return FamilyBid }
func (a BidAction) Kind() ActionType { return a.Type }
func (a BidAction) Why() string      { return a.Reason }
func (a BidAction) Target() ID       { return a.AdGroupID }

type AudienceAction struct {
	AudienceID ID         `json:"audience_id"`
	Type       ActionType `json:"type"`
	Reason     string     `json:"reason"`
}

func (a AudienceAction) Family() Family   { return FamilyAudience }
func (a AudienceAction) Kind() ActionType { return a.Type }
func (a AudienceAction) Why() string      { return a.Reason }
func (a AudienceAction) Target() ID       { return a.AudienceID }

type RecommendationSet struct {
	CampaignBudgetActions    []BudgetAction   `json:"campaign_budget_actions"`
	AdGroupBidActions        []BidAction      `json:"ad_group_bid_actions"`
	AudienceTargetingActions []AudienceAction `json:"audience_targeting_actions"`
	Explanation              string           `json:"explanation"`
}
