package signing

import "signflow/internal/domain/entity"

// PendingPredecessors returns the unsigned siblings that must sign before target.
// Unordered targets never wait.
func PendingPredecessors(target entity.SignerRecord, siblings []entity.SignerRecord) []entity.SignerRecord {
	if !target.Order.IsOrdered() {
		return nil
	}

	var pending []entity.SignerRecord
	for _, s := range siblings {
		if s.ID == target.ID || s.Signed {
			continue
		}
		if s.Order.Before(target.Order) {
			pending = append(pending, s)
		}
	}
	return pending
}

// CheckSigningOrder returns entity.ErrOutOfOrder when target may not sign yet.
func CheckSigningOrder(orderedSigning bool, target entity.SignerRecord, siblings []entity.SignerRecord) error {
	if !orderedSigning {
		return nil
	}
	if len(PendingPredecessors(target, siblings)) > 0 {
		return entity.ErrOutOfOrder
	}
	return nil
}
