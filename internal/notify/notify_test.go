package notify_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"shopbot/internal/domain"
	"shopbot/internal/notify"
)

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []string
	docs    []string
	sendErr error
	docErr  error
}

func (f *fakeMessenger) Send(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeMessenger) SendMenu(chatID int64, text string, rows [][]string) error {
	return f.Send(chatID, text)
}

func (f *fakeMessenger) SendDocument(chatID int64, path, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docErr != nil {
		return f.docErr
	}
	f.docs = append(f.docs, path)
	return nil
}

func (f *fakeMessenger) FileURL(fileID string) (string, error) { return "", nil }

func TestFormatOrder(t *testing.T) {
	order := domain.Order{
		ID:      1717243200000,
		Date:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Name:    "Olena",
		Contact: "@olena",
		Items: []domain.OrderItem{
			{ProductID: 1, Title: "Hoodie", Size: "M", Qty: 2},
			{ProductID: 2, Title: "Mug", Qty: 1},
		},
	}
	catalog := []domain.Product{
		{ID: 1, Title: "Hoodie", Price: 500},
		{ID: 2, Title: "Mug", Price: 120},
	}

	text := notify.FormatOrder(order, catalog)
	for _, want := range []string{
		"#1717243200000",
		"Olena",
		"@olena",
		"Hoodie (M)",
		"Price: 500.00 x 2",
		"Subtotal: 1000.00",
		"Order total: 1120.00",
		"01.06.2025 12:00:00",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("order summary missing %q:\n%s", want, text)
		}
	}
}

func TestFormatSubmissionOmitsEmptyOptionalFields(t *testing.T) {
	text := notify.FormatSubmission(notify.Submission{
		Name:    "Ivan",
		Price:   "1000",
		Details: "Landing page",
	}, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	if strings.Contains(text, "Email") || strings.Contains(text, "Project type") {
		t.Fatalf("empty optional fields must be omitted:\n%s", text)
	}
	for _, want := range []string{"Ivan", "1000", "Landing page"} {
		if !strings.Contains(text, want) {
			t.Fatalf("submission summary missing %q:\n%s", want, text)
		}
	}
}

func TestOrderPlacedDelivers(t *testing.T) {
	msgr := &fakeMessenger{}
	relay := notify.NewRelay(msgr, 42)

	relay.OrderPlaced(domain.Order{ID: 1, Name: "A"}, nil)
	relay.Close()

	if len(msgr.sent) != 1 || !strings.Contains(msgr.sent[0], "NEW ORDER") {
		t.Fatalf("want one order notification, got %v", msgr.sent)
	}
}

func TestAttachmentsSentAndRemoved(t *testing.T) {
	msgr := &fakeMessenger{}
	relay := notify.NewRelay(msgr, 42)

	path := filepath.Join(t.TempDir(), "brief.pdf")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	relay.FormReceived(notify.Submission{Name: "Ivan", Price: "1", Details: "d"}, []string{path})
	relay.Close()

	if len(msgr.docs) != 1 || msgr.docs[0] != path {
		t.Fatalf("want document delivery for %s, got %v", path, msgr.docs)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("temp attachment must be removed after delivery")
	}
}

func TestAttachmentRemovedEvenWhenDeliveryFails(t *testing.T) {
	msgr := &fakeMessenger{docErr: errors.New("telegram down")}
	relay := notify.NewRelay(msgr, 42)

	path := filepath.Join(t.TempDir(), "brief.pdf")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	relay.FormReceived(notify.Submission{Name: "Ivan", Price: "1", Details: "d"}, []string{path})
	relay.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("temp attachment must be removed even when delivery fails")
	}
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	msgr := &fakeMessenger{sendErr: errors.New("telegram down")}
	relay := notify.NewRelay(msgr, 42)

	// must not panic or block the caller
	relay.OrderPlaced(domain.Order{ID: 1}, nil)
	relay.Close()
}
