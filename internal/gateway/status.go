package gateway

import "github.com/blues/giftreg/internal/model"

// MapStatus 网关状态映射为内部状态，未知状态返回 false
func MapStatus(providerStatus string) (model.ContributionStatus, bool) {
	switch providerStatus {
	case "approved":
		return model.ContributionStatusApproved, true
	case "pending", "in_process", "authorized", "in_mediation":
		return model.ContributionStatusPending, true
	case "cancelled", "rejected":
		return model.ContributionStatusCancelled, true
	case "refunded", "charged_back":
		return model.ContributionStatusRefunded, true
	}
	return "", false
}

// SelectPayment 优先已批准，其次处理中，否则取最后一笔
func SelectPayment(payments []Payment) (Payment, bool) {
	if len(payments) == 0 {
		return Payment{}, false
	}
	for _, p := range payments {
		if p.Status == "approved" {
			return p, true
		}
	}
	for _, p := range payments {
		if p.Status == "pending" || p.Status == "in_process" {
			return p, true
		}
	}
	return payments[len(payments)-1], true
}
