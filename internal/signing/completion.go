package signing

import (
	"math"

	"signflow/internal/domain/entity"
)

// EvaluateCompletion computes the progress of a request from all of its signer records.
func EvaluateCompletion(records []entity.SignerRecord) entity.Completion {
	total := len(records)
	signed := 0
	for _, r := range records {
		if r.Signed {
			signed++
		}
	}

	if total == 0 {
		return entity.Completion{}
	}

	return entity.Completion{
		Total:       total,
		SignedCount: signed,
		Percentage:  int(math.Round(float64(signed) / float64(total) * 100)),
		Complete:    signed == total,
	}
}
