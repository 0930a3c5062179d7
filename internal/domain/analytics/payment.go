package analytics

import (
	"cmp"
	"slices"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/shopspring/decimal"
)

// PaymentTypeNotDefined is the placeholder payment type of the source data
const PaymentTypeNotDefined = "not_defined"

// PaymentShare is one slice of the payment method distribution.
// Percentage has one decimal place. Shares are apportioned so that a
// distribution always totals 100.0, which can leave one entry a tenth
// away from its own rounded share: three equal types give 33.4, 33.3
// and 33.3.
type PaymentShare struct {
	Method     string          `json:"payment_type"`
	Count      int64           `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PaymentsForView keeps the payment records whose order appears in view.
// Each payment record is returned once no matter how many line items its
// order has.
func PaymentsForView(view View, payments []commerce.OrderPayment) []commerce.OrderPayment {
	orders := make(map[string]struct{}, len(view))
	for i := range view {
		orders[view[i].OrderID] = struct{}{}
	}

	out := make([]commerce.OrderPayment, 0)
	for _, p := range payments {
		if _, ok := orders[p.OrderID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// PaymentMethodDistribution counts payment records per payment type, most
// used first. With excludeZeroAndUndefined the not_defined type and empty
// groups are dropped before percentages are taken. Percentages are shares
// of the remaining total in tenths of a percent, distributed by largest
// remainder so that they always add up to exactly 100.0.
func PaymentMethodDistribution(payments []commerce.OrderPayment, excludeZeroAndUndefined bool) []PaymentShare {
	counts := countBy(payments, func(p *commerce.OrderPayment) string { return p.PaymentType })

	if excludeZeroAndUndefined {
		counts = slices.DeleteFunc(counts, func(kc keyCount) bool {
			return kc.count == 0 || kc.key == PaymentTypeNotDefined
		})
	}
	sortByCountDesc(counts)

	var total int64
	for _, kc := range counts {
		total += kc.count
	}
	if total == 0 {
		return []PaymentShare{}
	}

	tenths := apportionTenths(counts, total)
	out := make([]PaymentShare, len(counts))
	for i, kc := range counts {
		out[i] = PaymentShare{
			Method:     kc.key,
			Count:      kc.count,
			Percentage: decimal.New(tenths[i], -1),
		}
	}
	return out
}

// apportionTenths splits 1000 tenths of a percent across counts in
// proportion to their size using the largest remainder method. Equal
// remainders favour the earlier entry.
func apportionTenths(counts []keyCount, total int64) []int64 {
	const whole = 1000

	tenths := make([]int64, len(counts))
	remainders := make([]int64, len(counts))
	var assigned int64
	for i, kc := range counts {
		tenths[i] = kc.count * whole / total
		remainders[i] = kc.count * whole % total
		assigned += tenths[i]
	}

	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(remainders[b], remainders[a])
	})

	for i := 0; assigned < whole && i < len(order); i++ {
		tenths[order[i]]++
		assigned++
	}
	return tenths
}
