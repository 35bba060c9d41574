// Package stubapi is a local stand-in for the remote storefront API. It
// exists for manual testing against a backend that behaves like the real
// one, envelope quirks included, and as the integration-test backend for the
// client packages.
package stubapi

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/groupe1-react/storefront-client/internal/domain"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrProductNotFound = errors.New("product not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrBadCredentials  = errors.New("invalid email or password")
)

type User struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	password string
}

// Store holds all stub state in memory, one cart per user.
type Store struct {
	mu       sync.RWMutex
	users    map[string]User              // keyed by email
	carts    map[string][]domain.CartItem // keyed by user id
	products []domain.Product
	nextLine int64
}

func NewStore(products []domain.Product) *Store {
	return &Store{
		users:    make(map[string]User),
		carts:    make(map[string][]domain.CartItem),
		products: products,
	}
}

// SeedProducts is the default catalog for the stub.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Wireless Headphones", Description: "Over-ear, 30h battery", Price: 45000, ImageURL: "/img/headphones.jpg"},
		{ID: 2, Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: 65000, ImageURL: "/img/keyboard.jpg"},
		{ID: 3, Name: "USB-C Hub", Description: "7 ports", Price: 18000, ImageURL: "/img/hub.jpg"},
		{ID: 4, Name: "Laptop Stand", Price: 12500},
	}
}

func (s *Store) Register(name, email, password string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return User{}, ErrEmailTaken
	}
	user := User{ID: uuid.NewString(), Name: name, Email: email, password: password}
	s.users[email] = user
	return user, nil
}

func (s *Store) Authenticate(email, password string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[email]
	if !exists || user.password != password {
		return User{}, ErrBadCredentials
	}
	return user, nil
}

func (s *Store) Cart(userID string) []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyLines(s.carts[userID])
}

// AddItem creates or increments the line for the product and returns the
// full updated cart.
func (s *Store) AddItem(userID string, productID int64, quantity int) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, found := s.findProduct(productID)
	if !found {
		return nil, ErrProductNotFound
	}

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += quantity
			s.carts[userID] = lines
			return copyLines(lines), nil
		}
	}

	s.nextLine++
	lines = append(lines, domain.CartItem{
		ID:           s.nextLine,
		ProductID:    productID,
		Quantity:     quantity,
		UnitPrice:    product.Price,
		ProductName:  product.Name,
		ProductImage: product.ImageURL,
	})
	s.carts[userID] = lines
	return copyLines(lines), nil
}

func (s *Store) UpdateItem(userID string, lineID int64, quantity int) (domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
			s.carts[userID] = lines
			return lines[i], nil
		}
	}
	return domain.CartItem{}, ErrLineNotFound
}

// RemoveItem reports whether the line existed.
func (s *Store) RemoveItem(userID string, lineID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ID == lineID {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) ClearCart(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	return products
}

func (s *Store) Product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findProduct(id)
}

func (s *Store) findProduct(id int64) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func copyLines(lines []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(lines))
	copy(out, lines)
	return out
}
