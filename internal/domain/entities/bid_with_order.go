package entities

// BidWithOrder pairs a bid with its order. Listings and the decide
// path always carry both so the effective status can be computed
// without a second lookup.
type BidWithOrder struct {
	Bid   *Bid
	Order *Order
}

// EffectiveStatus of the paired bid.
func (bw *BidWithOrder) EffectiveStatus() BidStatus {
	return bw.Bid.EffectiveStatus(bw.Order)
}
