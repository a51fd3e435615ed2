package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"storefront/internal/features/orders/domain"
)

// ordersFile is the on-disk document: {"orders": [...]}.
type ordersFile struct {
	Orders []domain.Order `json:"orders"`
}

// FileOrderRepository implements ports.OrderRepository on a single JSON file.
// It serializes access within one process only.
type FileOrderRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileOrderRepository creates a repository backed by path. The file is created on first write.
func NewFileOrderRepository(path string) *FileOrderRepository {
	return &FileOrderRepository{path: path}
}

func (r *FileOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	if indexOf(doc.Orders, order.ID) >= 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderExists, order.ID)
	}

	doc.Orders = append(doc.Orders, *order)
	return r.write(doc)
}

func (r *FileOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	i := indexOf(doc.Orders, order.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
	}

	doc.Orders[i] = *order
	return r.write(doc)
}

func (r *FileOrderRepository) Complete(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	i := indexOf(doc.Orders, order.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
	}
	if doc.Orders[i].IsCompleted() {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotPending, order.ID)
	}

	doc.Orders[i] = *order
	return r.write(doc)
}

func (r *FileOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	return r.find(func(o *domain.Order) bool { return o.ID == id }, id)
}

func (r *FileOrderRepository) GetByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	return r.find(func(o *domain.Order) bool {
		return sessionID != "" && o.PaymentSessionID == sessionID
	}, "session "+sessionID)
}

func (r *FileOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	return doc.Orders, nil
}

func (r *FileOrderRepository) find(match func(*domain.Order) bool, label string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Orders {
		if match(&doc.Orders[i]) {
			order := doc.Orders[i]
			return &order, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, label)
}

func (r *FileOrderRepository) read() (*ordersFile, error) {
	doc := &ordersFile{Orders: []domain.Order{}}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode orders file: %w", err)
	}
	if doc.Orders == nil {
		doc.Orders = []domain.Order{}
	}
	return doc, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (r *FileOrderRepository) write(doc *ordersFile) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode orders: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create orders directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write orders: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write orders: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace orders file: %w", err)
	}
	return nil
}

func indexOf(orders []domain.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
