package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
)

// EscalationStore defines the database operations needed for buffer
// scanning and marketplace escalation
type EscalationStore interface {
	GetShiftsPastBuffer(ctx context.Context, teamID string, today string) ([]db.Shift, error)
	GetShift(ctx context.Context, shiftID string) (*db.Shift, error)
	MarkShiftNeedsSubstitute(ctx context.Context, shiftID string) error
	InsertListing(ctx context.Context, listing *db.MarketplaceListing) error
	GetListingsForRole(ctx context.Context, role model.ShiftRole) ([]db.MarketplaceListing, error)
	GetSubstitutes(ctx context.Context, roleFilter model.ShiftRole) ([]db.Substitute, error)
}

// Pricer suggests a payment rate for a shift offered on the substitute
// marketplace
type Pricer interface {
	SuggestRate(ctx context.Context, shift *db.Shift) (int, error)
}

// HistoricalPricer suggests a rate from the mean of earlier listings for
// the same role, falling back to a configured default when the role has
// no listing history
type HistoricalPricer struct {
	Store       EscalationStore
	DefaultRate int
}

func (p *HistoricalPricer) SuggestRate(ctx context.Context, shift *db.Shift) (int, error) {
	listings, err := p.Store.GetListingsForRole(ctx, shift.Role)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch listings for role %s: %w", shift.Role, err)
	}

	if len(listings) == 0 {
		return p.DefaultRate, nil
	}

	total := 0
	for _, listing := range listings {
		total += listing.SuggestedRate
	}
	return total / len(listings), nil
}

// EscalationResult reports one buffer scan
type EscalationResult struct {
	// Escalated lists shifts handed to the substitute marketplace
	Escalated []db.Shift
	Warnings  []string
}

// ScanBufferDeadlines finds shifts whose buffer deadline has passed while
// they are still pending or assigned-but-unconfirmed, and escalates each
// to the substitute marketplace. Escalation is a one-way state
// transition: an escalated shift leaves the automatic assignment pool
// until its listing resolves or is cancelled.
func ScanBufferDeadlines(
	ctx context.Context,
	store EscalationStore,
	pricer Pricer,
	notifier notify.Notifier,
	logger *zap.Logger,
	teamID string,
	now time.Time,
) (*EscalationResult, error) {
	today := todayString(now)
	logger.Info("Scanning buffer deadlines", zap.String("team_id", teamID), zap.String("today", today))

	shifts, err := store.GetShiftsPastBuffer(ctx, teamID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts past buffer: %w", err)
	}
	logger.Debug("Found shifts past buffer deadline", zap.Int("count", len(shifts)))

	result := &EscalationResult{Escalated: []db.Shift{}, Warnings: []string{}}

	for i := range shifts {
		shift := &shifts[i]
		if err := EscalateToMarketplace(ctx, store, pricer, notifier, logger, shift.ID); err != nil {
			logger.Warn("Failed to escalate shift",
				zap.String("shift_id", shift.ID),
				zap.Error(err))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Escalation of shift on %s failed: %v", shift.Date, err))
			continue
		}
		result.Escalated = append(result.Escalated, *shift)
	}

	logger.Info("Buffer scan completed",
		zap.Int("escalated", len(result.Escalated)),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

// EscalateToMarketplace moves one unresolved shift to the paid substitute
// marketplace: marks it as needing a substitute, prices it from similar
// historical shifts, creates the listing and notifies registered
// substitutes matching the shift's role.
func EscalateToMarketplace(
	ctx context.Context,
	store EscalationStore,
	pricer Pricer,
	notifier notify.Notifier,
	logger *zap.Logger,
	shiftID string,
) error {
	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		return fmt.Errorf("failed to fetch shift: %w", err)
	}
	if shift == nil {
		return fmt.Errorf("%w: shift %s", model.ErrNotFound, shiftID)
	}
	if shift.NeedsSubstitute {
		// Already escalated; scanning is idempotent
		return nil
	}

	if err := store.MarkShiftNeedsSubstitute(ctx, shiftID); err != nil {
		return fmt.Errorf("failed to mark shift for substitute: %w", err)
	}

	rate, err := pricer.SuggestRate(ctx, shift)
	if err != nil {
		return fmt.Errorf("failed to suggest rate: %w", err)
	}

	listing := &db.MarketplaceListing{
		ID:            uuid.New().String(),
		ShiftID:       shiftID,
		SuggestedRate: rate,
		CreatedAt:     time.Now().UTC(),
	}
	if err := store.InsertListing(ctx, listing); err != nil {
		return fmt.Errorf("failed to create marketplace listing: %w", err)
	}

	logger.Info("Shift escalated to marketplace",
		zap.String("shift_id", shiftID),
		zap.String("date", shift.Date),
		zap.String("role", string(shift.Role)),
		zap.Int("suggested_rate", rate))

	notifySubstitutes(ctx, store, notifier, logger, shift, rate)

	return nil
}

// notifySubstitutes tells every active substitute covering the shift's
// role about the new listing. Fire-and-forget: failures are logged.
func notifySubstitutes(
	ctx context.Context,
	store EscalationStore,
	notifier notify.Notifier,
	logger *zap.Logger,
	shift *db.Shift,
	rate int,
) {
	substitutes, err := store.GetSubstitutes(ctx, shift.Role)
	if err != nil {
		logger.Warn("Failed to fetch substitutes", zap.Error(err))
		return
	}

	for _, substitute := range substitutes {
		notification := notify.Notification{
			FamilyID: substitute.UserID,
			Type:     notify.TypeSubstituteAvailable,
			Title:    "Ny betalt dugnadsvakt tilgjengelig",
			Body: fmt.Sprintf("%s-vakt %s kl. %s-%s, foreslått sats %d kr.",
				shift.Role, shift.Date, shift.StartTime, shift.EndTime, rate),
			Data: map[string]string{"shift_id": shift.ID},
		}
		if err := notifier.Notify(ctx, notification); err != nil {
			logger.Warn("Failed to notify substitute",
				zap.String("substitute_id", substitute.ID),
				zap.Error(err))
		}
	}
}
