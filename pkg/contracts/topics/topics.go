package topics

const (
	// Offers
	OfferUpdates = "offer_updates"

	// Master bets
	PlanCommitted = "plan_committed"

	// DLQs
	OfferUpdatesDLQ  = "offer_updates_dlq"
	PlanCommittedDLQ = "plan_committed_dlq"
)
