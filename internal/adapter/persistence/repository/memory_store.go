package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/google/uuid"
)

// MemoryStore keeps every table in process memory behind one mutex, so each
// repository call is trivially atomic and serializable. It backs tests and
// STORE_DRIVER=memory demos; it is not shared across processes.
type MemoryStore struct {
	mu sync.Mutex

	users      map[string]entities.User
	userEmails map[string]string
	products   map[string]entities.Product
	productSKU map[string]string
	carts      map[string]entities.Cart
	openCarts  map[string]string
	items      map[string]map[string]entities.CartItem
	orders     map[string]entities.Order
	orderKeys  map[string]string

	seq   int64
	order map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      map[string]entities.User{},
		userEmails: map[string]string{},
		products:   map[string]entities.Product{},
		productSKU: map[string]string{},
		carts:      map[string]entities.Cart{},
		openCarts:  map[string]string{},
		items:      map[string]map[string]entities.CartItem{},
		orders:     map[string]entities.Order{},
		orderKeys:  map[string]string{},
		order:      map[string]int64{},
	}
}

func (s *MemoryStore) touch(id string) {
	s.seq++
	s.order[id] = s.seq
}

// newestFirst sorts by timestamp desc, breaking ties by insertion order.
func (s *MemoryStore) newestFirst(ids []string, at func(string) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ti, tj := at(ids[i]), at(ids[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return s.order[ids[i]] > s.order[ids[j]]
	})
}

func orderKey(userID, key string) string {
	return userID + "#" + key
}

// ---- users

type MemoryUserRepository struct{ s *MemoryStore }

var _ interfaces.IUserRepository = (*MemoryUserRepository)(nil)

func NewMemoryUserRepository(s *MemoryStore) *MemoryUserRepository {
	return &MemoryUserRepository{s: s}
}

func (r *MemoryUserRepository) Create(_ context.Context, u entities.User) (entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.userEmails[u.Email]; taken {
		return entities.User{}, interfaces.ErrDuplicateKey
	}
	if _, taken := r.s.users[u.ID]; taken {
		return entities.User{}, interfaces.ErrDuplicateKey
	}
	r.s.users[u.ID] = u
	r.s.userEmails[u.Email] = u.ID
	r.s.touch(u.ID)
	return u, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.users[id], nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.users[r.s.userEmails[email]], nil
}

func (r *MemoryUserRepository) Search(_ context.Context, criteria entities.UserSearch) ([]entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entities.User, 0)
	for _, id := range r.s.userIDs() {
		if u := r.s.users[id]; criteria.Matches(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entities.User, 0, len(r.s.users))
	for _, id := range r.s.userIDs() {
		out = append(out, r.s.users[id])
	}
	return out, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, u entities.User) (entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[u.ID]
	if !ok {
		return entities.User{}, nil
	}
	if owner, taken := r.s.userEmails[u.Email]; taken && owner != u.ID {
		return entities.User{}, interfaces.ErrDuplicateKey
	}
	delete(r.s.userEmails, current.Email)
	u.CreatedAt = current.CreatedAt
	r.s.users[u.ID] = u
	r.s.userEmails[u.Email] = u.ID
	return u, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	for cartID, c := range r.s.carts {
		if c.UserID == id {
			r.s.deleteCart(cartID)
		}
	}
	for orderID, o := range r.s.orders {
		if o.UserID == id {
			r.s.deleteOrder(orderID)
		}
	}
	delete(r.s.userEmails, u.Email)
	delete(r.s.users, id)
	return nil
}

func (s *MemoryStore) userIDs() []string {
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	s.newestFirst(ids, func(id string) time.Time { return s.users[id].CreatedAt })
	return ids
}

// ---- products

type MemoryProductRepository struct{ s *MemoryStore }

var _ interfaces.IProductRepository = (*MemoryProductRepository)(nil)

func NewMemoryProductRepository(s *MemoryStore) *MemoryProductRepository {
	return &MemoryProductRepository{s: s}
}

func (r *MemoryProductRepository) Create(_ context.Context, p entities.Product) (entities.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.productSKU[p.SKU]; taken {
		return entities.Product{}, interfaces.ErrDuplicateKey
	}
	if _, taken := r.s.products[p.ID]; taken {
		return entities.Product{}, interfaces.ErrDuplicateKey
	}
	r.s.products[p.ID] = p
	r.s.productSKU[p.SKU] = p.ID
	r.s.touch(p.ID)
	return p, nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (entities.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.products[id], nil
}

func (r *MemoryProductRepository) GetBySKU(_ context.Context, sku string) (entities.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.products[r.s.productSKU[sku]], nil
}

func (r *MemoryProductRepository) GetByIDs(_ context.Context, ids []string) (map[string]entities.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[string]entities.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *MemoryProductRepository) List(_ context.Context) ([]entities.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make([]string, 0, len(r.s.products))
	for id := range r.s.products {
		ids = append(ids, id)
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.products[id].UpdatedAt })

	out := make([]entities.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.products[id])
	}
	return out, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, p entities.Product) (entities.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.products[p.ID]
	if !ok {
		return entities.Product{}, nil
	}
	if owner, taken := r.s.productSKU[p.SKU]; taken && owner != p.ID {
		return entities.Product{}, interfaces.ErrDuplicateKey
	}
	delete(r.s.productSKU, current.SKU)
	r.s.products[p.ID] = p
	r.s.productSKU[p.SKU] = p.ID
	r.s.touch(p.ID)
	return p, nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	for cartID, lines := range r.s.items {
		if _, held := lines[id]; !held {
			continue
		}
		delete(lines, id)
		cart := r.s.carts[cartID]
		cart.Version++
		cart.UpdatedAt = now
		r.s.carts[cartID] = cart
	}
	delete(r.s.productSKU, p.SKU)
	delete(r.s.products, id)
	return nil
}

// ---- carts

type MemoryCartRepository struct{ s *MemoryStore }

var _ interfaces.ICartRepository = (*MemoryCartRepository)(nil)

func NewMemoryCartRepository(s *MemoryStore) *MemoryCartRepository {
	return &MemoryCartRepository{s: s}
}

func (r *MemoryCartRepository) GetOpenCart(_ context.Context, userID string) (entities.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.carts[r.s.openCarts[userID]], nil
}

func (r *MemoryCartRepository) GetOrCreateOpenCart(_ context.Context, userID string) (entities.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.openCart(userID), nil
}

func (s *MemoryStore) openCart(userID string) entities.Cart {
	if id, ok := s.openCarts[userID]; ok {
		return s.carts[id]
	}
	now := time.Now().UTC()
	c := entities.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    entities.CartStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.carts[c.ID] = c
	s.openCarts[userID] = c.ID
	s.items[c.ID] = map[string]entities.CartItem{}
	s.touch(c.ID)
	return c
}

func (r *MemoryCartRepository) AddItem(_ context.Context, cmd entities.AddItemCommand) (entities.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var line entities.CartItem
	if id, ok := r.s.openCarts[cmd.UserID]; ok {
		line = r.s.items[id][cmd.ProductID]
	}
	if cmd.MaxLineQuantity > 0 && line.Quantity+cmd.Quantity > cmd.MaxLineQuantity {
		return entities.Cart{}, interfaces.ErrLineQuantityExceeded
	}

	cart := r.s.openCart(cmd.UserID)
	if line.ID == "" {
		line = entities.CartItem{ID: uuid.NewString(), CartID: cart.ID, ProductID: cmd.ProductID}
	}
	line.Quantity += cmd.Quantity
	line.UnitPrice = cmd.UnitPrice
	r.s.items[cart.ID][cmd.ProductID] = line

	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	r.s.carts[cart.ID] = cart
	return cart, nil
}

func (r *MemoryCartRepository) ListItems(_ context.Context, cartID string) ([]entities.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entities.CartItem, 0, len(r.s.items[cartID]))
	for _, it := range r.s.items[cartID] {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *MemoryCartRepository) ClearItems(_ context.Context, cartID string) (entities.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[cartID]
	if !ok || cart.Status != entities.CartStatusOpen {
		return entities.Cart{}, interfaces.ErrCartNotOpen
	}
	r.s.items[cartID] = map[string]entities.CartItem{}
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	r.s.carts[cartID] = cart
	return cart, nil
}

func (r *MemoryCartRepository) GetByID(_ context.Context, id string) (entities.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.carts[id], nil
}

func (r *MemoryCartRepository) List(_ context.Context) ([]entities.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make([]string, 0, len(r.s.carts))
	for id := range r.s.carts {
		ids = append(ids, id)
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.carts[id].CreatedAt })

	out := make([]entities.Cart, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.carts[id])
	}
	return out, nil
}

func (r *MemoryCartRepository) UpdateStatus(_ context.Context, id string, status entities.CartStatus) (entities.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[id]
	if !ok {
		return entities.Cart{}, nil
	}
	switch {
	case status == entities.CartStatusOpen && cart.Status != entities.CartStatusOpen:
		if other, exists := r.s.openCarts[cart.UserID]; exists && other != id {
			return entities.Cart{}, interfaces.ErrDuplicateKey
		}
		r.s.openCarts[cart.UserID] = id
	case status != entities.CartStatusOpen && cart.Status == entities.CartStatusOpen:
		delete(r.s.openCarts, cart.UserID)
	}
	cart.Status = status
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	r.s.carts[id] = cart
	return cart, nil
}

func (r *MemoryCartRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteCart(id)
	return nil
}

func (s *MemoryStore) deleteCart(id string) {
	cart, ok := s.carts[id]
	if !ok {
		return
	}
	if s.openCarts[cart.UserID] == id {
		delete(s.openCarts, cart.UserID)
	}
	delete(s.items, id)
	delete(s.carts, id)
}

// ---- orders

type MemoryOrderRepository struct{ s *MemoryStore }

var _ interfaces.IOrderRepository = (*MemoryOrderRepository)(nil)

func NewMemoryOrderRepository(s *MemoryStore) *MemoryOrderRepository {
	return &MemoryOrderRepository{s: s}
}

func (r *MemoryOrderRepository) CreateFromCart(_ context.Context, cmd entities.CheckoutCommand) (entities.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[cmd.CartID]
	if !ok || cart.Status != entities.CartStatusOpen {
		return entities.Order{}, interfaces.ErrCartNotOpen
	}
	if cart.Version != cmd.CartVersion {
		return entities.Order{}, interfaces.ErrConcurrentUpdate
	}
	o := cmd.Order
	if o.IdempotencyKey != "" {
		if _, used := r.s.orderKeys[orderKey(o.UserID, o.IdempotencyKey)]; used {
			return entities.Order{}, interfaces.ErrDuplicateKey
		}
		r.s.orderKeys[orderKey(o.UserID, o.IdempotencyKey)] = o.ID
	}

	o.Items = append([]entities.OrderLine(nil), o.Items...)
	r.s.orders[o.ID] = o
	r.s.touch(o.ID)

	cart.Status = entities.CartStatusCheckedOut
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	r.s.carts[cart.ID] = cart
	delete(r.s.openCarts, cart.UserID)
	return o, nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (entities.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOrder(r.s.orders[id]), nil
}

func (r *MemoryOrderRepository) GetByIdempotencyKey(_ context.Context, userID, key string) (entities.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOrder(r.s.orders[r.s.orderKeys[orderKey(userID, key)]]), nil
}

func (r *MemoryOrderRepository) ListByUserID(_ context.Context, userID string, limit int) ([]entities.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entities.Order, 0)
	for _, id := range r.s.orderIDs() {
		if o := r.s.orders[id]; o.UserID == userID {
			out = append(out, copyOrder(o))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MemoryOrderRepository) List(_ context.Context) ([]entities.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entities.Order, 0, len(r.s.orders))
	for _, id := range r.s.orderIDs() {
		out = append(out, copyOrder(r.s.orders[id]))
	}
	return out, nil
}

func (r *MemoryOrderRepository) UpdatePaymentStatus(_ context.Context, id, status string) (entities.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return entities.Order{}, nil
	}
	o.PaymentStatus = status
	r.s.orders[id] = o
	return copyOrder(o), nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteOrder(id)
	return nil
}

func (s *MemoryStore) deleteOrder(id string) {
	o, ok := s.orders[id]
	if !ok {
		return
	}
	if o.IdempotencyKey != "" {
		delete(s.orderKeys, orderKey(o.UserID, o.IdempotencyKey))
	}
	delete(s.orders, id)
}

func (s *MemoryStore) orderIDs() []string {
	ids := make([]string, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	s.newestFirst(ids, func(id string) time.Time { return s.orders[id].CreatedAt })
	return ids
}

func copyOrder(o entities.Order) entities.Order {
	if o.Items != nil {
		o.Items = append([]entities.OrderLine(nil), o.Items...)
	}
	return o
}
