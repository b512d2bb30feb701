package rates

import (
	"fmt"
	"log/slog"
)

// Notifier delivers an alert about a better offer. Implementations are
// allowed to silently no-op when delivery is not configured.
type Notifier interface {
	Send(subject, htmlBody string) error
}

// CurrentRate is the user's actively contracted rate for one utility type.
type CurrentRate struct {
	Name string
	Rate float64
}

// Reconciler compares the best discovered offer for a utility type against
// the user's current configuration and decides whether an alert is warranted.
type Reconciler struct {
	notifier Notifier
}

func NewReconciler(notifier Notifier) *Reconciler {
	return &Reconciler{notifier: notifier}
}

// Run evaluates one utility type. best is nil when no live offer exists, in
// which case there is nothing to compare and the type is skipped. current is
// nil when the user has no configured rate, which always warrants an alert.
// Returns whether a notification was sent.
func (r *Reconciler) Run(utilityType UtilityType, best *Offer, current *CurrentRate) bool {
	if best == nil {
		slog.Debug("No best offer, skipping reconciliation", "type", string(utilityType))
		return false
	}

	if current != nil && current.Rate <= best.Price {
		slog.Debug("Current rate still competitive",
			"type", string(utilityType), "current", current.Rate, "best", best.Price)
		return false
	}

	subject := fmt.Sprintf("Better %s rate found: %s at %g", utilityType, best.Provider, best.Price)
	body := r.buildBody(utilityType, best, current)

	if err := r.notifier.Send(subject, body); err != nil {
		// a failed notification does not roll back the decision
		slog.Error("Failed to send rate alert", "type", string(utilityType), "error", err)
	}

	return true
}

func (r *Reconciler) buildBody(utilityType UtilityType, best *Offer, current *CurrentRate) string {
	currentLine := "You have no current rate configured."
	if current != nil {
		currentLine = fmt.Sprintf("Your current rate with %s is %g.", current.Name, current.Rate)
	}

	return fmt.Sprintf(`<p>A better %s rate is available.</p>
<p><strong>%s</strong> offers %g for %d month(s).</p>
<p>%s</p>
<p><a href="%s">View the offer</a></p>`,
		utilityType, best.Provider, best.Price, best.TermMonths, currentLine, best.URL)
}
