package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"shopbot/internal/domain"
	applog "shopbot/internal/log"
	"shopbot/internal/store"
	"shopbot/internal/validate"
)

const (
	cmdStart  = "/start"
	cmdCancel = "/cancel"

	menuAdd    = "➕ Add product"
	menuList   = "📋 Product list"
	menuEdit   = "✏️ Edit product"
	menuDelete = "❌ Delete product"
	menuOrders = "📦 Orders"
	menuMove   = "🔄 Reorder"

	editTitle       = "✏️ Title"
	editDescription = "✏️ Description"
	editPrice       = "✏️ Price"
	editSizes       = "✏️ Sizes"
	editQuantity    = "✏️ Quantity"
	editPhotos      = "✏️ Photos"
	editDone        = "✅ Finish editing"

	// terminates a photo step
	doneKeyword = "done"
	// entered at the sizes prompt to use a single flat stock count
	flatStock = "-"
)

var mainMenuRows = [][]string{
	{menuAdd, menuList},
	{menuEdit, menuDelete},
	{menuOrders, menuMove},
}

var editMenuRows = [][]string{
	{editTitle, editDescription},
	{editPrice, editSizes},
	{editQuantity, editPhotos},
	{editDone},
}

// Machine drives the admin conversation. Every inbound message from the
// operator chat advances the session one step through the handler table;
// messages from any other chat are dropped without a reply.
type Machine struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	store   *store.Store
	msg     Messenger
	adminID int64
	now     func() time.Time

	steps map[Step]func(*Session, Message)
}

func NewMachine(st *store.Store, msg Messenger, adminID int64) *Machine {
	m := &Machine{
		sessions: make(map[int64]*Session),
		store:    st,
		msg:      msg,
		adminID:  adminID,
		now:      time.Now,
	}
	m.steps = map[Step]func(*Session, Message){
		StepIdle:              m.handleIdle,
		StepAddTitle:          m.handleAddTitle,
		StepAddDescription:    m.handleAddDescription,
		StepAddPrice:          m.handleAddPrice,
		StepAddSizes:          m.handleAddSizes,
		StepAddQuantity:       m.handleAddQuantity,
		StepAddSizeQuantities: m.handleAddSizeQuantities,
		StepAddPhotos:         m.handleAddPhotos,
		StepEditSelect:        m.handleEditSelect,
		StepEditField:         m.handleEditField,
		StepEditPhotos:        m.handleEditPhotos,
		StepDeleteSelect:      m.handleDeleteSelect,
		StepMoveSelect:        m.handleMoveSelect,
		StepMoveTarget:        m.handleMoveTarget,
	}
	return m
}

// Handle processes one inbound message.
func (m *Machine) Handle(msg Message) {
	if msg.ChatID != m.adminID {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.sessions[msg.ChatID]
	if sess == nil {
		sess = &Session{}
		m.sessions[msg.ChatID] = sess
	}

	switch msg.Text {
	case cmdStart:
		m.showMainMenu(sess)
		return
	case cmdCancel:
		m.send("❌ Current action cancelled")
		m.showMainMenu(sess)
		return
	}
	// Mid-flow, any other command is swallowed: the flow does not advance
	// and the command does not run.
	if sess.Step != StepIdle && strings.HasPrefix(msg.Text, "/") {
		return
	}

	m.steps[sess.Step](sess, msg)
}

// Session reports the current step for a chat; used by tests.
func (m *Machine) Session(chatID int64) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[chatID]; s != nil {
		return *s
	}
	return Session{}
}

func (m *Machine) send(text string) {
	if err := m.msg.Send(m.adminID, text); err != nil {
		applog.EventError("bot.send", err, nil)
	}
}

func (m *Machine) sendMenu(text string, rows [][]string) {
	if err := m.msg.SendMenu(m.adminID, text, rows); err != nil {
		applog.EventError("bot.send", err, nil)
	}
}

func (m *Machine) showMainMenu(sess *Session) {
	*sess = Session{}
	m.sendMenu("👋 Welcome to the shop control panel!", mainMenuRows)
}

func (m *Machine) showEditMenu(text string) {
	m.sendMenu(text, editMenuRows)
}

// ---------- idle menu ----------

func (m *Machine) handleIdle(sess *Session, msg Message) {
	switch msg.Text {
	case menuAdd:
		*sess = Session{Step: StepAddTitle}
		m.send("📝 Send the product title:")

	case menuList:
		products := m.store.Products()
		if len(products) == 0 {
			m.send("ℹ️ No products yet")
			return
		}
		var b strings.Builder
		b.WriteString("📦 Products:\n\n")
		for i, p := range products {
			fmt.Fprintf(&b, "%d. %s\n   Price: %.2f\n", i+1, p.Title, p.Price)
			if p.Sized() {
				b.WriteString("   Sizes:\n")
				for _, s := range p.Sizes {
					fmt.Fprintf(&b, "      %s: %d pcs\n", s.Size, s.Quantity)
				}
			} else {
				fmt.Fprintf(&b, "   In stock: %d pcs\n", p.Quantity)
			}
			b.WriteString("\n")
		}
		m.send(b.String())

	case menuEdit:
		if m.store.ProductCount() == 0 {
			m.send("ℹ️ No products to edit")
			return
		}
		sess.Step = StepEditSelect
		m.send(m.numberedList("📋 Pick a product to edit:"))

	case menuDelete:
		if m.store.ProductCount() == 0 {
			m.send("ℹ️ No products to delete")
			return
		}
		sess.Step = StepDeleteSelect
		m.send(m.numberedList("🗑 Pick a product to delete:"))

	case menuOrders:
		orders := m.store.RecentOrders(5)
		if len(orders) == 0 {
			m.send("ℹ️ No orders yet")
			return
		}
		var b strings.Builder
		b.WriteString("📋 Recent orders:\n\n")
		for _, o := range orders {
			fmt.Fprintf(&b, "🆔 #%d\n👤 %s\n📞 %s\n📅 %s\n🛒 %d item(s)\n\n",
				o.ID, o.Name, o.Contact, o.Date.Format("02.01.2006 15:04"), len(o.Items))
		}
		m.send(b.String())

	case menuMove:
		if m.store.ProductCount() < 2 {
			m.send("ℹ️ Need at least 2 products to reorder")
			return
		}
		sess.Step = StepMoveSelect
		m.send(m.numberedList("↕️ Pick a product to move:"))
	}
}

func (m *Machine) numberedList(header string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for i, p := range m.store.Products() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Title)
	}
	return b.String()
}

// ---------- add product ----------

func (m *Machine) handleAddTitle(sess *Session, msg Message) {
	sess.Draft.Title = msg.Text
	sess.Step = StepAddDescription
	m.send("📝 Send the product description:")
}

func (m *Machine) handleAddDescription(sess *Session, msg Message) {
	sess.Draft.Description = msg.Text
	sess.Step = StepAddPrice
	m.send("💰 Send the price (number only):")
}

func (m *Machine) handleAddPrice(sess *Session, msg Message) {
	price, ok := validate.Price(msg.Text)
	if !ok {
		m.send("❌ The price must be a number. Try again:")
		return
	}
	sess.Draft.Price = price
	sess.Step = StepAddSizes
	m.send("📏 Send sizes separated by commas (e.g. S,M,L), or \"-\" for a single stock count:")
}

func (m *Machine) handleAddSizes(sess *Session, msg Message) {
	if strings.TrimSpace(msg.Text) == flatStock {
		sess.Step = StepAddQuantity
		m.send("🔢 Enter the stock count:")
		return
	}
	sizes, ok := validate.Sizes(msg.Text)
	if !ok {
		m.send("❌ Enter at least one size. Try again:")
		return
	}
	sess.Draft.Sizes = make([]domain.SizeVariant, len(sizes))
	for i, size := range sizes {
		sess.Draft.Sizes[i] = domain.SizeVariant{Size: size}
	}
	sess.SizeCursor = 0
	sess.Step = StepAddSizeQuantities
	m.askQuantity(sess)
}

func (m *Machine) askQuantity(sess *Session) {
	m.send(fmt.Sprintf("🔢 Enter the quantity for size %s:", sess.Draft.Sizes[sess.SizeCursor].Size))
}

func (m *Machine) handleAddQuantity(sess *Session, msg Message) {
	qty, ok := validate.Quantity(msg.Text)
	if !ok {
		m.send(fmt.Sprintf("❌ The quantity must be a number between 0 and %d. Try again:", validate.MaxQuantity))
		return
	}
	sess.Draft.Quantity = qty
	m.startPhotos(sess)
}

func (m *Machine) handleAddSizeQuantities(sess *Session, msg Message) {
	qty, ok := validate.Quantity(msg.Text)
	if !ok {
		m.send(fmt.Sprintf("❌ The quantity must be a number between 0 and %d. Try again:", validate.MaxQuantity))
		return
	}
	sess.Draft.Sizes[sess.SizeCursor].Quantity = qty
	sess.SizeCursor++
	if sess.SizeCursor < len(sess.Draft.Sizes) {
		m.askQuantity(sess)
		return
	}
	m.startPhotos(sess)
}

func (m *Machine) startPhotos(sess *Session) {
	sess.Draft.Photos = []string{}
	sess.Step = StepAddPhotos
	m.send(fmt.Sprintf("🖼 Send product photos (up to %d), then type \"%s\"", domain.MaxPhotos, doneKeyword))
}

func (m *Machine) handleAddPhotos(sess *Session, msg Message) {
	switch {
	case msg.PhotoID != "":
		if len(sess.Draft.Photos) >= domain.MaxPhotos {
			m.send(fmt.Sprintf("❌ You already added the maximum number of photos (%d)", domain.MaxPhotos))
			return
		}
		sess.Draft.Photos = append(sess.Draft.Photos, msg.PhotoID)
		m.send(fmt.Sprintf("🖼 Added photo %d/%d. Send more or type \"%s\"", len(sess.Draft.Photos), domain.MaxPhotos, doneKeyword))

	case strings.EqualFold(strings.TrimSpace(msg.Text), doneKeyword):
		if len(sess.Draft.Photos) == 0 {
			m.send("❌ Please add at least one photo")
			return
		}
		product := sess.Draft
		product.ID = domain.NewID(m.now())
		m.store.AddProduct(product)
		applog.Event("product.add", map[string]any{"id": product.ID, "title": product.Title})
		m.send(fmt.Sprintf("✅ Product %q added!", product.Title))
		m.showMainMenu(sess)

	default:
		m.send(fmt.Sprintf("❌ Please send a photo or type \"%s\"", doneKeyword))
	}
}

// ---------- edit product ----------

func (m *Machine) handleEditSelect(sess *Session, msg Message) {
	products := m.store.Products()
	i, ok := validate.Index(msg.Text, len(products))
	if !ok {
		m.send("❌ Invalid product number. Try again:")
		return
	}
	*sess = Session{Step: StepEditField, EditID: products[i].ID}
	m.showEditMenu(fmt.Sprintf("✏️ Editing %q. What would you like to change?", products[i].Title))
}

func (m *Machine) handleEditField(sess *Session, msg Message) {
	if msg.Text == editDone {
		m.send("✅ Editing finished")
		m.showMainMenu(sess)
		return
	}

	if sess.EditField == "" {
		switch msg.Text {
		case editTitle:
			sess.EditField = "title"
			m.send("Enter the new title:")
		case editDescription:
			sess.EditField = "desc"
			m.send("Enter the new description:")
		case editPrice:
			sess.EditField = "price"
			m.send("Enter the new price:")
		case editSizes:
			sess.EditField = "sizes"
			m.send("Enter the new sizes separated by commas:")
		case editQuantity:
			sess.EditField = "quantity"
			if p, ok := m.store.Product(sess.EditID); ok && p.Sized() {
				m.send(`Enter the new quantity per size (format "S: 10, M: 5"):`)
			} else {
				m.send("Enter the new stock count:")
			}
		case editPhotos:
			sess.Step = StepEditPhotos
			sess.Photos = []string{}
			m.send(fmt.Sprintf("🖼 Send the new photos (up to %d), then type \"%s\"", domain.MaxPhotos, doneKeyword))
		}
		return
	}

	m.applyFieldEdit(sess, msg.Text)
	sess.EditField = ""
}

func (m *Machine) applyFieldEdit(sess *Session, text string) {
	switch sess.EditField {
	case "title":
		m.store.UpdateProduct(sess.EditID, func(p *domain.Product) { p.Title = text })
		m.send(fmt.Sprintf("✅ Title changed to: %s", text))
	case "desc":
		m.store.UpdateProduct(sess.EditID, func(p *domain.Product) { p.Description = text })
		m.send("✅ Description updated")
	case "price":
		price, ok := validate.Price(text)
		if !ok {
			m.send("❌ Invalid price format")
			return
		}
		m.store.UpdateProduct(sess.EditID, func(p *domain.Product) { p.Price = price })
		m.send(fmt.Sprintf("✅ Price changed to: %.2f", price))
	case "sizes":
		sizes, ok := validate.Sizes(text)
		if !ok {
			m.send("❌ No sizes given")
			return
		}
		m.store.UpdateProduct(sess.EditID, func(p *domain.Product) {
			p.Sizes = make([]domain.SizeVariant, len(sizes))
			for i, size := range sizes {
				p.Sizes[i] = domain.SizeVariant{Size: size}
			}
			p.Quantity = 0
		})
		m.send(fmt.Sprintf("✅ Sizes changed to: %s\nNow set the quantity for each size", strings.Join(sizes, ", ")))
	case "quantity":
		p, ok := m.store.Product(sess.EditID)
		if !ok {
			return
		}
		if p.Sized() {
			updates, ok := validate.SizeQuantities(text)
			if !ok {
				m.send(`❌ Invalid format. Use: "S: 10, M: 5, L: 3"`)
				return
			}
			m.store.UpdateProduct(sess.EditID, func(p *domain.Product) {
				for i := range p.Sizes {
					if qty, ok := updates[p.Sizes[i].Size]; ok {
						p.Sizes[i].Quantity = qty
					}
				}
			})
			m.send("✅ Quantities updated")
			return
		}
		qty, ok := validate.Quantity(text)
		if !ok {
			m.send(fmt.Sprintf("❌ The quantity must be a number between 0 and %d", validate.MaxQuantity))
			return
		}
		m.store.UpdateProduct(sess.EditID, func(p *domain.Product) { p.Quantity = qty })
		m.send("✅ Quantity updated")
	}
}

func (m *Machine) handleEditPhotos(sess *Session, msg Message) {
	switch {
	case msg.PhotoID != "":
		if len(sess.Photos) >= domain.MaxPhotos {
			m.send(fmt.Sprintf("❌ You already added the maximum number of photos (%d)", domain.MaxPhotos))
			return
		}
		sess.Photos = append(sess.Photos, msg.PhotoID)
		m.send(fmt.Sprintf("🖼 Added photo %d/%d. Send more or type \"%s\"", len(sess.Photos), domain.MaxPhotos, doneKeyword))

	case strings.EqualFold(strings.TrimSpace(msg.Text), doneKeyword):
		if len(sess.Photos) == 0 {
			m.send("❌ Photos unchanged, keeping the old ones")
		} else {
			photos := sess.Photos
			m.store.UpdateProduct(sess.EditID, func(p *domain.Product) { p.Photos = photos })
			m.send("✅ Photos updated!")
		}
		sess.Step = StepEditField
		sess.EditField = ""
		sess.Photos = nil
		m.showEditMenu("What would you like to change?")

	default:
		m.send(fmt.Sprintf("❌ Please send a photo or type \"%s\"", doneKeyword))
	}
}

// ---------- delete / reorder ----------

func (m *Machine) handleDeleteSelect(sess *Session, msg Message) {
	i, ok := validate.Index(msg.Text, m.store.ProductCount())
	if !ok {
		m.send("❌ Invalid product number. Try again:")
		return
	}
	p, _ := m.store.RemoveProduct(i)
	applog.Event("product.delete", map[string]any{"id": p.ID, "title": p.Title})
	m.send(fmt.Sprintf("✅ Product %q deleted", p.Title))
	m.showMainMenu(sess)
}

func (m *Machine) handleMoveSelect(sess *Session, msg Message) {
	i, ok := validate.Index(msg.Text, m.store.ProductCount())
	if !ok {
		m.send("❌ Invalid product number. Try again:")
		return
	}
	sess.MoveFrom = i
	sess.Step = StepMoveTarget
	m.send("↕️ Which position should it move to? Enter the number:")
}

func (m *Machine) handleMoveTarget(sess *Session, msg Message) {
	// an out-of-range target re-prompts but keeps the captured source
	j, ok := validate.Index(msg.Text, m.store.ProductCount())
	if !ok {
		m.send("❌ Invalid position. Try again:")
		return
	}
	m.store.MoveProduct(sess.MoveFrom, j)
	m.send("✅ Product order updated")
	m.showMainMenu(sess)
}
