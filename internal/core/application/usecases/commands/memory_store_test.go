package commands_test

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/model/product"
	"marketdelivery/internal/core/domain/model/supermarket"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// memoryStore is a transactional in-memory backend for handler tests. Each unit of work
// edits a private copy of the state that replaces the shared state on commit.
type memoryStore struct {
	mu        sync.Mutex
	state     memoryState
	commitErr error
	commits   int
}

type memoryState struct {
	orders       map[kernel.UUID]order.Snapshot
	products     map[kernel.UUID]*product.Product
	supermarkets map[kernel.UUID]*supermarket.Supermarket
	drivers      map[kernel.UUID]*driver.Driver
}

type versioned interface {
	AdvanceVersion()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{state: memoryState{
		orders:       make(map[kernel.UUID]order.Snapshot),
		products:     make(map[kernel.UUID]*product.Product),
		supermarkets: make(map[kernel.UUID]*supermarket.Supermarket),
		drivers:      make(map[kernel.UUID]*driver.Driver),
	}}
}

func (s *memoryStore) Create() commands.UoW {
	return &memoryUoW{store: s}
}

// seed commits the given aggregates directly.
func (s *memoryStore) seed(aggregates ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range aggregates {
		switch v := a.(type) {
		case *order.Order:
			snap := v.Snapshot()
			snap.Version++
			s.state.orders[v.ID()] = snap
			v.AdvanceVersion()
		case *product.Product:
			s.state.products[v.ID()] = cloneProduct(v)
		case *supermarket.Supermarket:
			s.state.supermarkets[v.ID()] = v
		case *driver.Driver:
			s.state.drivers[v.ID()] = cloneDriver(v)
		default:
			panic("unsupported aggregate")
		}
	}
}

func (s *memoryStore) order(id kernel.UUID) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.state.orders[id]
	if !ok {
		return nil
	}
	o, err := order.RestoreOrder(snap)
	if err != nil {
		panic(err)
	}
	return o
}

func (s *memoryStore) product(id kernel.UUID) *product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProduct(s.state.products[id])
}

func (s *memoryStore) driver(id kernel.UUID) *driver.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDriver(s.state.drivers[id])
}

func (s *memoryStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders)
}

func (st memoryState) clone() memoryState {
	out := memoryState{
		orders:       maps.Clone(st.orders),
		products:     make(map[kernel.UUID]*product.Product, len(st.products)),
		supermarkets: maps.Clone(st.supermarkets),
		drivers:      make(map[kernel.UUID]*driver.Driver, len(st.drivers)),
	}
	for id, p := range st.products {
		out.products[id] = cloneProduct(p)
	}
	for id, d := range st.drivers {
		out.drivers[id] = cloneDriver(d)
	}
	return out
}

func cloneProduct(p *product.Product) *product.Product {
	if p == nil {
		return nil
	}
	c, err := product.RestoreProduct(p.ID(), p.SupermarketID(), p.Name(), p.Category(),
		p.Price(), p.Weight(), p.Promotion(), p.Stock())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneDriver(d *driver.Driver) *driver.Driver {
	if d == nil {
		return nil
	}
	c, err := driver.RestoreDriver(d.ID(), d.Name(), d.Location(), d.Status(), d.IsDiscoverable(),
		d.Earnings(), d.Version())
	if err != nil {
		panic(err)
	}
	return c
}

type memoryUoW struct {
	store   *memoryStore
	tx      *memoryState
	tracked []versioned
}

func (u *memoryUoW) Begin(context.Context) error {
	if u.tx != nil {
		return nil
	}
	u.store.mu.Lock()
	tx := u.store.state.clone()
	u.store.mu.Unlock()
	u.tx = &tx
	return nil
}

func (u *memoryUoW) Commit(context.Context) error {
	if u.tx == nil {
		return errors.New("no active transaction")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if u.store.commitErr != nil {
		return u.store.commitErr
	}

	u.store.state = *u.tx
	u.store.commits++
	u.tx = nil
	for _, a := range u.tracked {
		a.AdvanceVersion()
	}
	u.tracked = nil
	return nil
}

func (u *memoryUoW) Rollback(context.Context) error {
	u.tx = nil
	u.tracked = nil
	return nil
}

func (u *memoryUoW) OrderRepository() ports.OrderRepository {
	return memoryOrders{uow: u}
}

func (u *memoryUoW) ProductRepository() ports.ProductRepository {
	return memoryProducts{uow: u}
}

func (u *memoryUoW) SupermarketRepository() ports.SupermarketRepository {
	return memorySupermarkets{uow: u}
}

func (u *memoryUoW) DriverRepository() ports.DriverRepository {
	return memoryDrivers{uow: u}
}

type memoryOrders struct{ uow *memoryUoW }

func (r memoryOrders) Add(_ context.Context, o *order.Order) error {
	if _, exists := r.uow.tx.orders[o.ID()]; exists {
		return errs.NewStateConflictError("order", "already exists")
	}
	r.put(o)
	return nil
}

func (r memoryOrders) Update(_ context.Context, o *order.Order) error {
	stored, ok := r.uow.tx.orders[o.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("order", o.ID())
	}
	if stored.Version != o.Version() {
		return errs.NewStateConflictError("order", "version mismatch")
	}
	r.put(o)
	return nil
}

func (r memoryOrders) put(o *order.Order) {
	snap := o.Snapshot()
	snap.Version = o.Version() + 1
	r.uow.tx.orders[o.ID()] = snap
	r.uow.tracked = append(r.uow.tracked, o)
}

func (r memoryOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	snap, ok := r.uow.tx.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return order.RestoreOrder(snap)
}

func (r memoryOrders) filter(keep func(order.Snapshot) bool) []*order.Order {
	var out []*order.Order
	for _, snap := range r.uow.tx.orders {
		if !keep(snap) {
			continue
		}
		o, err := order.RestoreOrder(snap)
		if err != nil {
			panic(err)
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *order.Order) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID().String(), b.ID().String())
	})
	return out
}

func atLocation(snap order.Snapshot, supermarketID, locationID kernel.UUID) bool {
	return snap.SupermarketID.IsEqual(supermarketID) && snap.LocationID.IsEqual(locationID)
}

func (r memoryOrders) ListQueued(_ context.Context, supermarketID, locationID kernel.UUID) ([]*order.Order, error) {
	out := r.filter(func(s order.Snapshot) bool {
		return atLocation(s, supermarketID, locationID) && s.Status.IsQueued()
	})
	slices.SortStableFunc(out, func(a, b *order.Order) int {
		return a.SubmittedAt().Compare(*b.SubmittedAt())
	})
	return out, nil
}

func (r memoryOrders) CountQueuedByValidator(
	_ context.Context,
	supermarketID, locationID kernel.UUID,
) (map[kernel.UUID]int, error) {
	counts := make(map[kernel.UUID]int)
	for _, s := range r.uow.tx.orders {
		if atLocation(s, supermarketID, locationID) && s.Status.IsQueued() && s.ValidatorID != nil {
			counts[*s.ValidatorID]++
		}
	}
	return counts, nil
}

func (r memoryOrders) ListByStatusAt(
	_ context.Context,
	supermarketID, locationID kernel.UUID,
	status order.Status,
) ([]*order.Order, error) {
	return r.filter(func(s order.Snapshot) bool {
		return atLocation(s, supermarketID, locationID) && s.Status == status
	}), nil
}

func (r memoryOrders) CountByDriver(_ context.Context, driverID kernel.UUID, status order.Status) (int, error) {
	count := 0
	for _, s := range r.uow.tx.orders {
		if s.Status == status && s.DriverID != nil && s.DriverID.IsEqual(driverID) {
			count++
		}
	}
	return count, nil
}

func (r memoryOrders) ListByDriver(_ context.Context, driverID kernel.UUID, status order.Status) ([]*order.Order, error) {
	return r.filter(func(s order.Snapshot) bool {
		return s.Status == status && s.DriverID != nil && s.DriverID.IsEqual(driverID)
	}), nil
}

func (r memoryOrders) CountInZone(_ context.Context, zoneID kernel.UUID, status order.Status) (int, error) {
	count := 0
	for _, s := range r.uow.tx.orders {
		if s.Status == status && s.ZoneID != nil && s.ZoneID.IsEqual(zoneID) {
			count++
		}
	}
	return count, nil
}

func (r memoryOrders) ListAwaitingDriver(_ context.Context, limit int) ([]*order.Order, error) {
	out := r.filter(func(s order.Snapshot) bool {
		return s.Status == order.Validated && s.DeliveryType.IsDispatchable() && !r.held(s)
	})
	slices.SortStableFunc(out, func(a, b *order.Order) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// held reports whether the order's driver can still hold it.
func (r memoryOrders) held(s order.Snapshot) bool {
	if s.DriverID == nil {
		return false
	}
	d, ok := r.uow.tx.drivers[*s.DriverID]
	return ok && d.CanHoldAssignment()
}

type memoryProducts struct{ uow *memoryUoW }

func (r memoryProducts) Add(_ context.Context, p *product.Product) error {
	r.uow.tx.products[p.ID()] = cloneProduct(p)
	return nil
}

func (r memoryProducts) Update(_ context.Context, p *product.Product) error {
	r.uow.tx.products[p.ID()] = cloneProduct(p)
	return nil
}

func (r memoryProducts) Get(_ context.Context, id kernel.UUID) (*product.Product, error) {
	p, ok := r.uow.tx.products[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("product", id)
	}
	return cloneProduct(p), nil
}

func (r memoryProducts) GetByIDs(_ context.Context, ids []kernel.UUID) (map[kernel.UUID]*product.Product, error) {
	out := make(map[kernel.UUID]*product.Product)
	for _, id := range ids {
		if p, ok := r.uow.tx.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

func (r memoryProducts) ListByCategories(
	_ context.Context,
	supermarketID kernel.UUID,
	categories []string,
) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range r.uow.tx.products {
		if p.BelongsTo(supermarketID) && slices.Contains(categories, p.Category()) {
			out = append(out, cloneProduct(p))
		}
	}
	slices.SortFunc(out, func(a, b *product.Product) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return out, nil
}

func (r memoryProducts) DecrementStock(_ context.Context, productID, locationID kernel.UUID, quantity int) error {
	p, ok := r.uow.tx.products[productID]
	if !ok {
		return errs.NewObjectNotFoundError("product", productID)
	}
	return p.DecrementStock(locationID, quantity)
}

type memorySupermarkets struct{ uow *memoryUoW }

func (r memorySupermarkets) Add(_ context.Context, s *supermarket.Supermarket) error {
	r.uow.tx.supermarkets[s.ID()] = s
	return nil
}

func (r memorySupermarkets) Get(_ context.Context, id kernel.UUID) (*supermarket.Supermarket, error) {
	s, ok := r.uow.tx.supermarkets[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("supermarket", id)
	}
	return s, nil
}

type memoryDrivers struct{ uow *memoryUoW }

func (r memoryDrivers) Add(_ context.Context, d *driver.Driver) error {
	if _, exists := r.uow.tx.drivers[d.ID()]; exists {
		return errs.NewStateConflictError("driver", "already exists")
	}
	r.put(d)
	return nil
}

func (r memoryDrivers) Update(_ context.Context, d *driver.Driver) error {
	stored, ok := r.uow.tx.drivers[d.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("driver", d.ID())
	}
	if stored.Version() != d.Version() {
		return errs.NewStateConflictError("driver", "version mismatch")
	}
	r.put(d)
	return nil
}

func (r memoryDrivers) put(d *driver.Driver) {
	stored := cloneDriver(d)
	stored.AdvanceVersion()
	r.uow.tx.drivers[d.ID()] = stored
	r.uow.tracked = append(r.uow.tracked, d)
}

func (r memoryDrivers) Get(_ context.Context, id kernel.UUID) (*driver.Driver, error) {
	d, ok := r.uow.tx.drivers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("driver", id)
	}
	return cloneDriver(d), nil
}

func (r memoryDrivers) ListAssignable(context.Context) ([]*driver.Driver, error) {
	var out []*driver.Driver
	for _, d := range r.uow.tx.drivers {
		if d.IsAssignable() {
			out = append(out, cloneDriver(d))
		}
	}
	slices.SortFunc(out, func(a, b *driver.Driver) int {
		return cmp.Compare(a.ID().String(), b.ID().String())
	})
	return out, nil
}

// memoryLedger keeps balances and per-order redemptions.
type memoryLedger struct {
	mu        sync.Mutex
	balances  map[kernel.UUID]int
	redeemed  map[kernel.UUID]int
	earned    map[kernel.UUID]int
	redeemErr error
	earnErr   error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		balances: make(map[kernel.UUID]int),
		redeemed: make(map[kernel.UUID]int),
		earned:   make(map[kernel.UUID]int),
	}
}

func (l *memoryLedger) Earn(_ context.Context, userID kernel.UUID, points int, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.earnErr != nil {
		return l.earnErr
	}
	l.balances[userID] += points
	l.earned[userID] += points
	return nil
}

func (l *memoryLedger) Redeem(_ context.Context, userID kernel.UUID, points int, orderID kernel.UUID) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.redeemErr != nil {
		return decimal.Zero, l.redeemErr
	}
	if l.balances[userID] < points {
		return decimal.Zero, errs.NewValueIsOutOfRangeError("points", points, 1, l.balances[userID])
	}
	l.balances[userID] -= points
	l.redeemed[orderID] += points
	return order.LoyaltyReductionFor(points), nil
}

func (l *memoryLedger) Refund(_ context.Context, userID kernel.UUID, orderID kernel.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	points := l.redeemed[orderID]
	delete(l.redeemed, orderID)
	l.balances[userID] += points
	return points, nil
}

func (l *memoryLedger) balance(userID kernel.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages map[kernel.UUID][]string
	err      error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: make(map[kernel.UUID][]string)}
}

func (n *recordingNotifier) Notify(_ context.Context, userID kernel.UUID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[userID] = append(n.messages[userID], message)
	return n.err
}

func (n *recordingNotifier) count(userID kernel.UUID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages[userID])
}

type stubPayments map[kernel.UUID]ports.PaymentStatus

func (p stubPayments) GetPaymentStatus(_ context.Context, orderID kernel.UUID) (ports.PaymentStatus, error) {
	status, ok := p[orderID]
	if !ok {
		return ports.PaymentPending, nil
	}
	return status, nil
}
