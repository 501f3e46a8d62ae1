package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shopbot/internal/bot"
	"shopbot/internal/domain"
	applog "shopbot/internal/log"
)

// Submission is a contact-form payload relayed to the operator.
type Submission struct {
	Name        string
	Email       string
	ProjectType string
	Price       string
	Details     string
	ContactInfo string
}

// Relay formats event summaries and delivers them to the operator chat on
// a single worker goroutine, so delivery never blocks request handling.
// A delivery failure is logged and goes nowhere else: by the time the
// relay runs, the order or form has already been committed.
type Relay struct {
	msg    bot.Messenger
	chatID int64
	tasks  chan func()
	done   chan struct{}
	once   sync.Once
}

func NewRelay(msg bot.Messenger, chatID int64) *Relay {
	r := &Relay{
		msg:    msg,
		chatID: chatID,
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Relay) run() {
	for task := range r.tasks {
		task()
	}
	close(r.done)
}

// Close drains pending notifications and stops the worker. Safe to call
// more than once.
func (r *Relay) Close() {
	r.once.Do(func() { close(r.tasks) })
	<-r.done
}

func (r *Relay) enqueue(task func()) {
	select {
	case r.tasks <- task:
	default:
		applog.EventError("notify.queue.full", nil, nil)
	}
}

// OrderPlaced relays a committed order. The catalog snapshot supplies
// prices for line totals.
func (r *Relay) OrderPlaced(order domain.Order, catalog []domain.Product) {
	text := FormatOrder(order, catalog)
	r.enqueue(func() {
		if err := r.msg.Send(r.chatID, text); err != nil {
			applog.EventError("notify.order", err, map[string]any{"order_id": order.ID})
		}
	})
}

// FormReceived relays a contact-form submission. Attachment files are sent
// as documents and removed from disk whether or not delivery works out.
func (r *Relay) FormReceived(sub Submission, attachments []string) {
	text := FormatSubmission(sub, time.Now())
	r.enqueue(func() {
		if err := r.msg.Send(r.chatID, text); err != nil {
			applog.EventError("notify.form", err, nil)
		}
		for _, path := range attachments {
			r.sendAttachment(path)
		}
	})
}

func (r *Relay) sendAttachment(path string) {
	defer func() {
		if err := os.Remove(path); err != nil {
			applog.EventError("notify.attachment.cleanup", err, map[string]any{"path": path})
		}
	}()
	if err := r.msg.SendDocument(r.chatID, path, filepath.Base(path)); err != nil {
		applog.EventError("notify.attachment", err, map[string]any{"path": path})
	}
}

// FormatOrder renders the fixed operator-facing order summary.
func FormatOrder(order domain.Order, catalog []domain.Product) string {
	prices := make(map[int64]float64, len(catalog))
	for _, p := range catalog {
		prices[p.ID] = p.Price
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📦 NEW ORDER! #%d\n\n", order.ID)
	fmt.Fprintf(&b, "👤 Name: %s\n", order.Name)
	fmt.Fprintf(&b, "📞 Contact: %s\n\n", order.Contact)
	b.WriteString("🛒 Items:\n")

	total := 0.0
	for _, item := range order.Items {
		if item.Size != "" {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Size)
		} else {
			fmt.Fprintf(&b, "- %s\n", item.Title)
		}
		price := prices[item.ProductID]
		subtotal := price * float64(item.Qty)
		fmt.Fprintf(&b, "  Price: %.2f x %d\n", price, item.Qty)
		fmt.Fprintf(&b, "  Subtotal: %.2f\n", subtotal)
		total += subtotal
	}
	fmt.Fprintf(&b, "\n💵 Order total: %.2f\n", total)
	fmt.Fprintf(&b, "⏰ Date: %s", order.Date.Format("02.01.2006 15:04:05"))
	return b.String()
}

// FormatSubmission renders the contact-form summary.
func FormatSubmission(sub Submission, now time.Time) string {
	var b strings.Builder
	b.WriteString("📨 NEW REQUEST!\n\n")
	fmt.Fprintf(&b, "👤 Name: %s\n", sub.Name)
	if sub.Email != "" {
		fmt.Fprintf(&b, "📧 Email: %s\n", sub.Email)
	}
	if sub.ProjectType != "" {
		fmt.Fprintf(&b, "🧩 Project type: %s\n", sub.ProjectType)
	}
	fmt.Fprintf(&b, "💰 Budget: %s\n", sub.Price)
	fmt.Fprintf(&b, "📝 Details: %s\n", sub.Details)
	if sub.ContactInfo != "" {
		fmt.Fprintf(&b, "📞 Contact: %s\n", sub.ContactInfo)
	}
	fmt.Fprintf(&b, "⏰ Date: %s", now.Format("02.01.2006 15:04:05"))
	return b.String()
}
