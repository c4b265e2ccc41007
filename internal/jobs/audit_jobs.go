package jobs

import (
	"context"
	"strconv"
	"time"

	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/logger"
	"rentacar-escrow-backend/internal/notify"
)

// RunConservationAudit recomputes the conservation invariant: total custody
// must cover the admin's claim plus every owner's withdrawable claim. The
// engine maintains this by construction; the audit exists to catch drift
// from operator intervention or storage corruption, and alerts instead of
// mutating anything.
func (jr *JobRunner) RunConservationAudit() {
	jr.runWithRecovery("ConservationAudit", jr.conservationAudit)
}

func (jr *JobRunner) conservationAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	contractBalance, err := jr.store.ContractBalance(ctx)
	if err != nil {
		logger.Error("audit: failed to read contract balance", "error", err)
		return
	}
	adminBalance, err := jr.store.AdminBalance(ctx)
	if err != nil {
		logger.Error("audit: failed to read admin balance", "error", err)
		return
	}
	cars, err := jr.store.Cars(ctx)
	if err != nil {
		logger.Error("audit: failed to list cars", "error", err)
		return
	}

	totalClaims := adminBalance
	for owner, car := range cars {
		totalClaims, err = domain.CheckedAdd(totalClaims, car.AvailableToWithdraw)
		if err != nil {
			jr.reportViolation(ctx, "claims sum overflow", contractBalance, adminBalance, owner.String())
			return
		}
	}

	if contractBalance < adminBalance {
		jr.reportViolation(ctx, "contract balance below admin claim", contractBalance, adminBalance, "")
		return
	}
	if contractBalance < totalClaims {
		jr.reportViolation(ctx, "contract balance below total claims", contractBalance, totalClaims, "")
		return
	}

	logger.Debug("audit: conservation holds",
		"contract_balance", contractBalance,
		"admin_balance", adminBalance,
		"total_claims", totalClaims,
		"cars", len(cars))
}

func (jr *JobRunner) reportViolation(ctx context.Context, reason string, contractBalance, claims int64, detail string) {
	logger.Error("audit: conservation violated",
		"reason", reason,
		"contract_balance", contractBalance,
		"claims", claims,
		"detail", detail)

	attrs := map[string]string{
		"reason":           reason,
		"contract_balance": strconv.FormatInt(contractBalance, 10),
		"claims":           strconv.FormatInt(claims, 10),
	}
	if detail != "" {
		attrs["detail"] = detail
	}
	jr.notifier.Emit(ctx, notify.NewEvent(notify.TopicAuditViolation, attrs))
}
