package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/shopspring/decimal"
)

// stubTrManager serializes transactional closures with a mutex, which
// stands in for the row locks the real manager relies on.
type stubTrManager struct {
	mu sync.Mutex
}

func (m *stubTrManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *stubTrManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

// Lock in case of t.Parallel call.
type mockOrderRepo struct {
	items []*entities.Order
	mu    sync.RWMutex
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, o *entities.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.items = append(m.items, &cp)
	return nil
}

func (m *mockOrderRepo) GetOrderByID(_ context.Context, id string) (*entities.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.ID == id {
			cp := *item
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockOrderRepo) UpdateOrder(_ context.Context, o *entities.Order) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, item := range m.items {
		if item.ID == o.ID {
			cp := *o
			cp.UpdatedAt = &now
			*item = cp
			return now, nil
		}
	}
	return time.Time{}, errs.ErrNotFound
}

func (m *mockOrderRepo) AssignWriter(_ context.Context, orderID string, writerID user.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == orderID {
			if item.WriterID != "" {
				return errs.ErrAlreadyAssigned
			}
			item.WriterID = writerID
			item.Status = entities.OrderInProgress
			return nil
		}
	}
	return errs.ErrNotFound
}

func (m *mockOrderRepo) SetOrderStatus(_ context.Context, orderID string, status entities.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, item := range m.items {
		if item.ID == orderID {
			item.Status = status
			item.UpdatedAt = &now
			return nil
		}
	}
	return errs.ErrNotFound
}

func (m *mockOrderRepo) list(match func(*entities.Order) bool) []*entities.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]*entities.Order, 0)
	for _, item := range m.items {
		if match(item) {
			cp := *item
			res = append(res, &cp)
		}
	}
	return res
}

func (m *mockOrderRepo) ListClientOrders(_ context.Context, clientID user.ID, _ params.OrderFilter) ([]*entities.Order, int, error) {
	res := m.list(func(o *entities.Order) bool { return o.ClientID == clientID })
	return res, len(res), nil
}

func (m *mockOrderRepo) ListWriterOrders(_ context.Context, writerID user.ID, filter params.OrderFilter) ([]*entities.Order, int, error) {
	if filter.AssignedOnly {
		res := m.list(func(o *entities.Order) bool { return o.WriterID == writerID })
		return res, len(res), nil
	}
	res := m.list(func(o *entities.Order) bool { return o.WriterID == "" })
	return res, len(res), nil
}

func (m *mockOrderRepo) ListAvailableOrders(_ context.Context, _ params.OrderFilter) ([]*entities.Order, int, error) {
	res := m.list(func(o *entities.Order) bool {
		return o.Status == entities.OrderPending && o.WriterID == ""
	})
	return res, len(res), nil
}

// mockBidRepo joins bids against the order repo the same way the SQL
// repository joins tables.
type mockBidRepo struct {
	orders *mockOrderRepo
	items  []*entities.Bid
	mu     sync.RWMutex
}

func (m *mockBidRepo) join(bid *entities.Bid) (*entities.BidWithOrder, error) {
	order, err := m.orders.GetOrderByID(context.Background(), bid.OrderID)
	if err != nil {
		return nil, err
	}
	cp := *bid
	return &entities.BidWithOrder{Bid: &cp, Order: order}, nil
}

func (m *mockBidRepo) CreateBid(_ context.Context, b *entities.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.OrderID == b.OrderID && item.WriterID == b.WriterID &&
			item.Status == entities.BidOpen {
			return errs.ErrDuplicateBid
		}
	}
	cp := *b
	m.items = append(m.items, &cp)
	return nil
}

func (m *mockBidRepo) find(bidID string) *entities.Bid {
	for _, item := range m.items {
		if item.ID == bidID {
			return item
		}
	}
	return nil
}

func (m *mockBidRepo) GetWriterBid(_ context.Context, bidID string, writerID user.ID) (*entities.BidWithOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bid := m.find(bidID)
	if bid == nil || bid.WriterID != writerID {
		return nil, errs.ErrNotFound
	}
	return m.join(bid)
}

func (m *mockBidRepo) GetClientBid(_ context.Context, bidID string, clientID user.ID) (*entities.BidWithOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bid := m.find(bidID)
	if bid == nil {
		return nil, errs.ErrNotFound
	}
	bwo, err := m.join(bid)
	if err != nil {
		return nil, err
	}
	if bwo.Order.ClientID != clientID {
		return nil, errs.ErrNotFound
	}
	return bwo, nil
}

func (m *mockBidRepo) GetClientBidForUpdate(ctx context.Context, bidID string, clientID user.ID) (*entities.BidWithOrder, error) {
	return m.GetClientBid(ctx, bidID, clientID)
}

func (m *mockBidRepo) HasAcceptedBid(_ context.Context, orderID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.OrderID == orderID && item.Status == entities.BidAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBidRepo) HasOtherAcceptedBid(_ context.Context, orderID, bidID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.OrderID == orderID && item.ID != bidID &&
			item.Status == entities.BidAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBidRepo) HasOpenBid(_ context.Context, orderID string, writerID user.ID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.OrderID == orderID && item.WriterID == writerID &&
			item.Status == entities.BidOpen {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBidRepo) UpdateBid(_ context.Context, b *entities.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.find(b.ID)
	if item == nil {
		return errs.ErrNotFound
	}
	item.Amount = b.Amount
	item.Message = b.Message
	item.SubmittedAt = b.SubmittedAt
	return nil
}

func (m *mockBidRepo) UpdateBidStatus(_ context.Context, bidID string, status entities.BidStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.find(bidID)
	if item == nil {
		return errs.ErrNotFound
	}
	if status == entities.BidAccepted {
		// The partial unique index backstop.
		for _, other := range m.items {
			if other.OrderID == item.OrderID && other.ID != bidID &&
				other.Status == entities.BidAccepted {
				return errs.ErrAlreadyAssigned
			}
		}
	}
	item.Status = status
	return nil
}

func (m *mockBidRepo) RejectOtherOpenBids(_ context.Context, orderID, winnerBidID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.OrderID == orderID && item.ID != winnerBidID &&
			item.Status == entities.BidOpen {
			item.Status = entities.BidRejected
			n++
		}
	}
	return n, nil
}

func (m *mockBidRepo) list(match func(*entities.Bid) bool, status string) ([]*entities.BidWithOrder, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]*entities.BidWithOrder, 0)
	for _, item := range m.items {
		if !match(item) {
			continue
		}
		if status != "" && string(item.Status) != status {
			continue
		}
		bwo, err := m.join(item)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, bwo)
	}
	return res, len(res), nil
}

func (m *mockBidRepo) ListWriterBids(_ context.Context, writerID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	return m.list(func(b *entities.Bid) bool { return b.WriterID == writerID }, filter.Status)
}

func (m *mockBidRepo) ListClientBids(ctx context.Context, clientID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	return m.list(func(b *entities.Bid) bool {
		order, err := m.orders.GetOrderByID(ctx, b.OrderID)
		return err == nil && order.ClientID == clientID
	}, filter.Status)
}

func (m *mockBidRepo) ListOrderBids(_ context.Context, orderID string, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	return m.list(func(b *entities.Bid) bool { return b.OrderID == orderID }, filter.Status)
}

type mockPaymentRepo struct {
	txns    []*entities.Transaction
	methods []*entities.PaymentMethod
	mu      sync.RWMutex
}

func (m *mockPaymentRepo) GetBalance(_ context.Context, userID user.ID) (*entities.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	balance := entities.ZeroBalance()
	for _, t := range m.txns {
		if t.UserID != userID || t.Type != entities.Earning {
			continue
		}
		balance.TotalEarned = balance.TotalEarned.Add(t.Amount)
		switch t.Status {
		case entities.TxnCompleted:
			balance.Available = balance.Available.Add(t.Amount)
		case entities.TxnPending:
			balance.Pending = balance.Pending.Add(t.Amount)
		}
	}
	return balance, nil
}

func (m *mockPaymentRepo) CreateTransaction(_ context.Context, t *entities.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.txns = append(m.txns, &cp)
	return nil
}

func (m *mockPaymentRepo) GetWithdrawalForUpdate(_ context.Context, txnID string) (*entities.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.txns {
		if t.ID == txnID && t.Type == entities.Withdrawal {
			cp := *t
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockPaymentRepo) SetTransactionStatus(_ context.Context, txnID string, status entities.TransactionStatus, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.ID == txnID {
			t.Status = status
			if description != "" {
				t.Description = description
			}
			return nil
		}
	}
	return errs.ErrNotFound
}

func (m *mockPaymentRepo) listTxns(match func(*entities.Transaction) bool) []*entities.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]*entities.Transaction, 0)
	for _, t := range m.txns {
		if match(t) {
			cp := *t
			res = append(res, &cp)
		}
	}
	return res
}

func (m *mockPaymentRepo) ListTransactions(_ context.Context, userID user.ID, _ params.TransactionFilter) ([]*entities.Transaction, int, error) {
	res := m.listTxns(func(t *entities.Transaction) bool { return t.UserID == userID })
	return res, len(res), nil
}

func (m *mockPaymentRepo) ListWithdrawals(_ context.Context, userID user.ID, _ params.TransactionFilter) ([]*entities.Transaction, int, error) {
	res := m.listTxns(func(t *entities.Transaction) bool {
		return t.UserID == userID && t.Type == entities.Withdrawal
	})
	return res, len(res), nil
}

func (m *mockPaymentRepo) ListAllWithdrawals(_ context.Context, _ params.TransactionFilter) ([]*entities.Transaction, int, error) {
	res := m.listTxns(func(t *entities.Transaction) bool { return t.Type == entities.Withdrawal })
	return res, len(res), nil
}

func (m *mockPaymentRepo) FindPaymentMethod(_ context.Context, userID user.ID, method, details string) (*entities.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pm := range m.methods {
		if pm.UserID == userID && pm.Method == method && pm.Details == details {
			cp := *pm
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockPaymentRepo) CreatePaymentMethod(_ context.Context, pm *entities.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pm
	m.methods = append(m.methods, &cp)
	return nil
}

func (m *mockPaymentRepo) GetPaymentMethod(_ context.Context, id string, userID user.ID) (*entities.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pm := range m.methods {
		if pm.ID == id && pm.UserID == userID {
			cp := *pm
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockPaymentRepo) ListPaymentMethods(_ context.Context, userID user.ID) ([]*entities.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]*entities.PaymentMethod, 0)
	for _, pm := range m.methods {
		if pm.UserID == userID {
			cp := *pm
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (m *mockPaymentRepo) ClearDefaultPaymentMethods(_ context.Context, userID user.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pm := range m.methods {
		if pm.UserID == userID {
			pm.IsDefault = false
		}
	}
	return nil
}

func (m *mockPaymentRepo) SetDefaultPaymentMethod(_ context.Context, id string, userID user.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pm := range m.methods {
		if pm.ID == id && pm.UserID == userID {
			pm.IsDefault = true
			return nil
		}
	}
	return errs.ErrNotFound
}

func (m *mockPaymentRepo) UpdatePaymentMethodDetails(_ context.Context, id string, userID user.ID, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pm := range m.methods {
		if pm.ID == id && pm.UserID == userID {
			pm.Details = details
			return nil
		}
	}
	return errs.ErrNotFound
}

type mockUserRepo struct {
	items []*user.User
	mu    sync.RWMutex
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id user.ID) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.ID == id {
			cp := *item
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

type stubNotifier struct {
	sent []*interfaces.Notification
	mu   sync.Mutex
}

func (s *stubNotifier) Notify(_ context.Context, n *interfaces.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
}

func (s *stubNotifier) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]string, len(s.sent))
	for i, n := range s.sent {
		res[i] = n.Kind
	}
	return res
}

type stubMessenger struct {
	posted []string
	mu     sync.Mutex
}

func (s *stubMessenger) GetOrCreateConversation(_ context.Context, orderID string, _, _ user.ID) (string, error) {
	return "conv-" + orderID, nil
}

func (s *stubMessenger) PostMessage(_ context.Context, conversationID string, _ user.ID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted = append(s.posted, conversationID+": "+text)
	return nil
}

type stubPricer struct {
	minimum decimal.Decimal
}

func (s *stubPricer) MinimumPrice(_ context.Context, _, _ string, _ int, _, _ time.Time) (decimal.Decimal, error) {
	return s.minimum, nil
}

// stubFileStore keeps attachments in memory keyed by owner/order/name.
type stubFileStore struct {
	files map[string][]byte
	mu    sync.Mutex
}

func (s *stubFileStore) key(ownerID user.ID, orderID, filename string) string {
	return string(ownerID) + "/" + orderID + "/" + filename
}

func (s *stubFileStore) Save(_ context.Context, ownerID user.ID, orderID, filename string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[s.key(ownerID, orderID, filename)] = data
	return nil
}

func (s *stubFileStore) List(_ context.Context, ownerID user.ID, orderID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := string(ownerID) + "/" + orderID + "/"
	names := make([]string, 0)
	for k := range s.files {
		if strings.HasPrefix(k, prefix) {
			names = append(names, strings.TrimPrefix(k, prefix))
		}
	}
	return names, nil
}

func (s *stubFileStore) Exists(_ context.Context, ownerID user.ID, orderID, filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[s.key(ownerID, orderID, filename)]
	return ok
}

func (s *stubFileStore) Remove(_ context.Context, ownerID user.ID, orderID, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[s.key(ownerID, orderID, filename)]; !ok {
		return errs.ErrNotFound
	}
	delete(s.files, s.key(ownerID, orderID, filename))
	return nil
}

// contains reports whether any recorded message has the substring.
func contains(items []string, substr string) bool {
	for _, item := range items {
		if strings.Contains(item, substr) {
			return true
		}
	}
	return false
}
