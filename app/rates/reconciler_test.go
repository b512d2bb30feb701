package rates

import (
	"errors"
	"strings"
	"testing"
)

type recordingNotifier struct {
	sent     int
	subject  string
	htmlBody string
	err      error
}

func (n *recordingNotifier) Send(subject, htmlBody string) error {
	n.sent++
	n.subject = subject
	n.htmlBody = htmlBody
	return n.err
}

func TestReconciler_NilBestSkips(t *testing.T) {
	notifier := &recordingNotifier{}
	reconciler := NewReconciler(notifier)

	if reconciler.Run(Gas, nil, &CurrentRate{Name: "Acme", Rate: 0.10}) {
		t.Error("Expected no notification without a best offer")
	}
	if notifier.sent != 0 {
		t.Errorf("Expected 0 sends, got %d", notifier.sent)
	}
}

func TestReconciler_NoCurrentRateAlwaysNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	reconciler := NewReconciler(notifier)

	best := &Offer{Provider: "Acme Energy", Type: Electric, Price: 0.12, TermMonths: 12, URL: "https://example.com/offer"}

	if !reconciler.Run(Electric, best, nil) {
		t.Error("Expected a notification when no current rate is configured")
	}
	if notifier.sent != 1 {
		t.Fatalf("Expected 1 send, got %d", notifier.sent)
	}
	if !strings.Contains(notifier.subject, "Acme Energy") {
		t.Errorf("subject should name the provider, got %q", notifier.subject)
	}
	if !strings.Contains(notifier.htmlBody, "no current rate configured") {
		t.Errorf("body should mention the missing configuration, got %q", notifier.htmlBody)
	}
}

func TestReconciler_BetterOfferNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	reconciler := NewReconciler(notifier)

	best := &Offer{Provider: "Cheap Gas Co", Type: Gas, Price: 0.08, TermMonths: 6, URL: "https://example.com/gas"}
	current := &CurrentRate{Name: "Incumbent", Rate: 0.11}

	if !reconciler.Run(Gas, best, current) {
		t.Error("Expected a notification for a strictly better offer")
	}
	if !strings.Contains(notifier.htmlBody, "Incumbent") {
		t.Errorf("body should name the current provider, got %q", notifier.htmlBody)
	}
	if !strings.Contains(notifier.htmlBody, "https://example.com/gas") {
		t.Errorf("body should link to the offer, got %q", notifier.htmlBody)
	}
}

func TestReconciler_EqualOrWorseOfferStaysQuiet(t *testing.T) {
	for _, currentRate := range []float64{0.10, 0.09} {
		notifier := &recordingNotifier{}
		reconciler := NewReconciler(notifier)

		best := &Offer{Provider: "Acme", Type: Gas, Price: 0.10, TermMonths: 12}
		current := &CurrentRate{Name: "Incumbent", Rate: currentRate}

		if reconciler.Run(Gas, best, current) {
			t.Errorf("current rate %g <= best %g must not notify", currentRate, best.Price)
		}
		if notifier.sent != 0 {
			t.Errorf("Expected 0 sends for current rate %g, got %d", currentRate, notifier.sent)
		}
	}
}

func TestReconciler_DeliveryFailureDoesNotChangeDecision(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp unreachable")}
	reconciler := NewReconciler(notifier)

	best := &Offer{Provider: "Acme", Type: Electric, Price: 0.07, TermMonths: 12}

	if !reconciler.Run(Electric, best, nil) {
		t.Error("a failed delivery must not change the reconciliation outcome")
	}
	if notifier.sent != 1 {
		t.Errorf("Expected 1 attempted send, got %d", notifier.sent)
	}
}
