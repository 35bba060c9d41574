// Package cart keeps a local mirror of the remote cart consistent with the
// server under an unreliable network and a mutable session token. The
// synchronizer is the sole owner of the local cart: views read its derived
// aggregates and request mutations through it, never touching the collection
// directly.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/groupe1-react/storefront-client/internal/api"
	"github.com/groupe1-react/storefront-client/internal/domain"
	"github.com/groupe1-react/storefront-client/internal/session"
)

var (
	// ErrAuthRequired is returned before any network call when a mutation
	// is attempted without a session token.
	ErrAuthRequired = errors.New("authentication required")

	// ErrSessionExpired is surfaced after the server rejected the held
	// token; the session has already been cleared.
	ErrSessionExpired = errors.New("session expired, please sign in again")

	// ErrClosed is returned by operations on a closed synchronizer.
	ErrClosed = errors.New("cart synchronizer is closed")

	// ErrBadQuantity is returned by Add for quantities below one.
	ErrBadQuantity = errors.New("quantity must be at least 1")
)

// refreshTimeout bounds the background fetch triggered by a session change.
const refreshTimeout = 15 * time.Second

type addRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

// Synchronizer mirrors the server-side cart for the current session.
//
// Mutations are serialized: a second Add/UpdateQuantity/Remove issued while
// one is in flight queues behind it, so the order mutations are applied in
// matches the order they were issued in, not the order responses happened to
// arrive in. Reads never block behind a mutation.
type Synchronizer struct {
	client   *api.Client
	sessions session.Store
	logger   *zap.Logger

	// opMu serializes mutations; it is held across the network call.
	opMu sync.Mutex
	sfg  singleflight.Group

	// mu guards everything below. gen is bumped on every session change
	// and on Close so late responses from a previous session are dropped
	// instead of being applied to state nobody observes anymore.
	mu      sync.RWMutex
	items   []domain.CartItem
	status  Status
	lastErr error
	gen     uint64
	closed  bool

	unsubscribe func()
	wg          sync.WaitGroup
}

func NewSynchronizer(client *api.Client, sessions session.Store, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synchronizer{
		client:   client,
		sessions: sessions,
		logger:   logger,
		status:   StatusUninitialized,
	}
	s.unsubscribe = sessions.Subscribe(s.onSessionChange)
	if _, ok := sessions.Token(); ok {
		s.status = StatusLoading
		s.startRefresh()
	} else {
		s.status = StatusEmpty
	}
	return s
}

// Close detaches the synchronizer from the session store and guarantees no
// in-flight response will be applied afterwards.
func (s *Synchronizer) Close() {
	s.unsubscribe()
	s.mu.Lock()
	s.closed = true
	s.gen++
	s.mu.Unlock()
	s.wg.Wait()
}

// onSessionChange reacts to the token appearing (login, possibly in another
// process) or disappearing (logout). A cleared token wipes the cart locally
// with no network call.
func (s *Synchronizer) onSessionChange(_ string, ok bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	if !ok {
		s.items = nil
		s.status = StatusEmpty
		s.lastErr = nil
		s.mu.Unlock()
		return
	}
	s.status = StatusLoading
	s.mu.Unlock()
	s.startRefresh()
}

func (s *Synchronizer) startRefresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.gen
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := s.refresh(ctx, gen); err != nil {
			s.logger.Warn("cart refresh failed", zap.Error(err))
		}
	}()
}

// Refresh replaces the local cart wholesale with the server's contents. It is
// idempotent; concurrent calls share one request.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	gen := s.gen
	if s.status == StatusUninitialized || s.status == StatusEmpty {
		s.status = StatusLoading
	}
	s.mu.Unlock()

	return s.refresh(ctx, gen)
}

func (s *Synchronizer) refresh(ctx context.Context, gen uint64) error {
	// The flight is keyed by generation: refreshes for the same session
	// share one request, but a refresh started after a session change must
	// not join a fetch that was issued with the previous token.
	v, err, _ := s.sfg.Do(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.client.Get(ctx, "/cart", &raw); err != nil {
			return nil, err
		}
		// The server has returned the collection bare and wrapped at
		// different times; unrecognizable payloads mean an empty cart.
		var items []domain.CartItem
		api.ExtractList(raw, &items)
		return items, nil
	})
	if err != nil {
		return s.fail(gen, err)
	}

	items := v.([]domain.CartItem)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return nil
	}
	s.items = items
	s.status = StatusReady
	s.lastErr = nil
	return nil
}

// Add creates or increments the line for productID. It fails fast without a
// network call when no session is active.
func (s *Synchronizer) Add(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrBadQuantity
	}
	if _, ok := s.sessions.Token(); !ok {
		return ErrAuthRequired
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	gen, err := s.beginMutation()
	if err != nil {
		return err
	}

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/cart", addRequest{ProductID: productID, Quantity: quantity}, &raw); err != nil {
		return s.fail(gen, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return nil
	}

	// Reconciliation: a full cart in the response is authoritative and
	// replaces local state; a single returned line is upserted; anything
	// else falls back to the optimistic merge-by-product increment.
	var fetched []domain.CartItem
	if api.ExtractList(raw, &fetched) {
		s.items = fetched
	} else if line, ok := extractLine(raw); ok {
		s.upsertLine(line)
	} else {
		s.mergeByProduct(productID, quantity)
	}
	s.status = StatusReady
	s.lastErr = nil
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities below one
// are a deliberate no-op: removing the last unit must go through Remove, it
// is never an implicit delete.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return nil
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	gen, err := s.beginMutation()
	if err != nil {
		return err
	}

	if err := s.client.Put(ctx, fmt.Sprintf("/cart/%d", itemID), updateRequest{Quantity: quantity}, nil); err != nil {
		return s.fail(gen, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return nil
	}
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.status = StatusReady
	s.lastErr = nil
	return nil
}

// Remove deletes a line. It is idempotent: removing an id the server no
// longer knows is a success.
func (s *Synchronizer) Remove(ctx context.Context, itemID int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	gen, err := s.beginMutation()
	if err != nil {
		return err
	}

	if err := s.client.Delete(ctx, fmt.Sprintf("/cart/%d", itemID), nil); err != nil && !api.IsNotFound(err) {
		return s.fail(gen, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return nil
	}
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.status = StatusReady
	s.lastErr = nil
	return nil
}

// Clear empties the cart. The local wipe is unconditional; the server-side
// clear is best effort because the user already sees an empty cart.
func (s *Synchronizer) Clear(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.items = nil
	s.status = StatusReady
	s.lastErr = nil
	s.mu.Unlock()

	if err := s.client.Delete(ctx, "/cart", nil); err != nil {
		s.logger.Warn("server-side cart clear failed", zap.Error(err))
	}
	return nil
}

// ItemCount is the sum of quantities in the last committed local state. It
// never triggers network activity.
func (s *Synchronizer) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart := domain.Cart{Items: s.items}
	return cart.ItemCount()
}

// Total is the value of the last committed local state.
func (s *Synchronizer) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart := domain.Cart{Items: s.items}
	return cart.Total()
}

// Items returns a copy of the current lines.
func (s *Synchronizer) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Synchronizer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the message retained from the last failure, if the
// synchronizer is currently in an error-bearing state.
func (s *Synchronizer) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// beginMutation flips into the transient Mutating state. Caller must hold
// opMu and must not hold mu.
func (s *Synchronizer) beginMutation() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.status = StatusMutating
	return s.gen, nil
}

// fail records a failure. A stale token is a special case: the session is
// invalidated and the cart wiped, everything else leaves the last known-good
// cart visible.
func (s *Synchronizer) fail(gen uint64, err error) error {
	if api.IsAuth(err) {
		s.expireSession()
		return ErrSessionExpired
	}

	s.mu.Lock()
	if !s.closed && s.gen == gen {
		s.status = StatusError
		s.lastErr = err
	}
	s.mu.Unlock()
	return err
}

// expireSession handles a 401/403: the held token is stale, so it is cleared
// (the one place the synchronizer writes to the session store) and the cart
// reset without retrying.
func (s *Synchronizer) expireSession() {
	if err := s.sessions.Clear(); err != nil {
		s.logger.Warn("clearing stale token failed", zap.Error(err))
	}
	s.mu.Lock()
	if !s.closed {
		s.gen++
		s.items = nil
		s.status = StatusEmpty
		s.lastErr = ErrSessionExpired
	}
	s.mu.Unlock()
}

// upsertLine applies a server-returned line: replace by line id, else by
// product, else append. Caller holds mu.
func (s *Synchronizer) upsertLine(line domain.CartItem) {
	for i := range s.items {
		if s.items[i].ID == line.ID || s.items[i].ProductID == line.ProductID {
			s.items[i] = line
			return
		}
	}
	s.items = append(s.items, line)
}

// mergeByProduct applies the optimistic increment when the server response
// carried nothing usable. Caller holds mu.
func (s *Synchronizer) mergeByProduct(productID int64, quantity int) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity += quantity
			return
		}
	}
	s.items = append(s.items, domain.CartItem{ProductID: productID, Quantity: quantity})
}

// extractLine recognizes a response body that is a single cart line, bare or
// wrapped under data/item.
func extractLine(raw json.RawMessage) (domain.CartItem, bool) {
	var env struct {
		Data json.RawMessage `json:"data"`
		Item json.RawMessage `json:"item"`
	}
	candidates := []json.RawMessage{raw}
	if err := json.Unmarshal(raw, &env); err == nil {
		candidates = append(candidates, env.Data, env.Item)
	}
	for _, candidate := range candidates {
		if len(candidate) == 0 {
			continue
		}
		var line domain.CartItem
		if err := json.Unmarshal(candidate, &line); err != nil {
			continue
		}
		if line.ID != 0 && line.ProductID != 0 {
			return line, true
		}
	}
	return domain.CartItem{}, false
}
