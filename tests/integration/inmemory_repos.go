package integration

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperror.ErrEmailExists()
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.ErrNotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound("User")
}

func (r *inMemoryUserRepo) SetWalletBinding(ctx context.Context, userID, walletName, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperror.ErrNotFound("User")
	}
	u.WalletName = walletName
	if address != "" && u.ReceiveAddress == "" {
		u.ReceiveAddress = address
	}
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu  sync.RWMutex
	txs []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, *tx)
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.txs {
		if r.txs[i].ID == id {
			cp := r.txs[i]
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound("Transaction")
}

func (r *inMemoryTransactionRepo) GetByNodeTxID(ctx context.Context, nodeTxID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.txs {
		if r.txs[i].NodeTxID == nodeTxID {
			cp := r.txs[i]
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound("Transaction")
}

func matchesHistory(tx *domain.Transaction, userID string, p ports.HistoryParams) bool {
	switch p.Direction {
	case "sent":
		if tx.FromUserID != userID {
			return false
		}
	case "received":
		if tx.ToUserID != userID {
			return false
		}
	default:
		if tx.FromUserID != userID && tx.ToUserID != userID {
			return false
		}
	}
	if p.Type != "" && string(tx.Type) != p.Type {
		return false
	}
	if p.Status != "" && string(tx.Status) != p.Status {
		return false
	}
	if p.StartDate != nil && tx.CreatedAt.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && tx.CreatedAt.After(*p.EndDate) {
		return false
	}
	if p.MinAmount != nil && tx.Amount < *p.MinAmount {
		return false
	}
	if p.MaxAmount != nil && tx.Amount > *p.MaxAmount {
		return false
	}
	if p.Search != "" {
		needle := strings.ToLower(p.Search)
		hay := strings.ToLower(tx.SenderName + " " + tx.ReceiverName + " " + tx.Description + " " + tx.Reference)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, userID string, params ports.HistoryParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Transaction
	for i := range r.txs {
		if matchesHistory(&r.txs[i], userID, params) {
			matched = append(matched, r.txs[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		switch params.Sort {
		case "oldest":
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		case "amount-high":
			return matched[i].Amount > matched[j].Amount
		case "amount-low":
			return matched[i].Amount < matched[j].Amount
		default:
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
	})

	total := int64(len(matched))
	start := (params.Page - 1) * params.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// --- In-Memory Campaign Repo ---

type inMemoryCampaignRepo struct {
	mu        sync.RWMutex
	campaigns map[string]*domain.Campaign
}

func newInMemoryCampaignRepo() *inMemoryCampaignRepo {
	return &inMemoryCampaignRepo{campaigns: make(map[string]*domain.Campaign)}
}

func (r *inMemoryCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *inMemoryCampaignRepo) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, apperror.ErrNotFound("Campaign")
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCampaignRepo) List(ctx context.Context) ([]domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryCampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.campaigns[c.ID]
	if !ok {
		return apperror.ErrNotFound("Campaign")
	}
	collected := existing.CollectedAmount
	cp := *c
	cp.CollectedAmount = collected
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *inMemoryCampaignRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[id]; !ok {
		return apperror.ErrNotFound("Campaign")
	}
	delete(r.campaigns, id)
	return nil
}

func (r *inMemoryCampaignRepo) IncrementCollected(ctx context.Context, id string, delta btcutil.Amount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return apperror.ErrNotFound("Campaign")
	}
	c.CollectedAmount += delta
	c.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Contact Repo ---

type inMemoryContactRepo struct {
	mu       sync.RWMutex
	contacts []domain.Contact
}

func newInMemoryContactRepo() *inMemoryContactRepo {
	return &inMemoryContactRepo{}
}

func (r *inMemoryContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.contacts {
		if r.contacts[i].OwnerID == c.OwnerID && r.contacts[i].ContactID == c.ContactID {
			return apperror.ErrDuplicateContact()
		}
	}
	r.contacts = append(r.contacts, *c)
	return nil
}

func (r *inMemoryContactRepo) Exists(ctx context.Context, ownerID, contactID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.contacts {
		if r.contacts[i].OwnerID == ownerID && r.contacts[i].ContactID == contactID {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryContactRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Contact
	for i := range r.contacts {
		if r.contacts[i].OwnerID == ownerID {
			out = append(out, r.contacts[i])
		}
	}
	return out, nil
}

func (r *inMemoryContactRepo) Delete(ctx context.Context, ownerID, contactID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.contacts {
		if r.contacts[i].OwnerID == ownerID && r.contacts[i].ContactID == contactID {
			r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
			return nil
		}
	}
	return apperror.ErrNotFound("Contact")
}

// --- In-Memory Money Request Repo ---

type inMemoryRequestRepo struct {
	mu       sync.RWMutex
	requests map[string]*domain.MoneyRequest
}

func newInMemoryRequestRepo() *inMemoryRequestRepo {
	return &inMemoryRequestRepo{requests: make(map[string]*domain.MoneyRequest)}
}

func (r *inMemoryRequestRepo) Create(ctx context.Context, req *domain.MoneyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *inMemoryRequestRepo) GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, apperror.ErrNotFound("Money request")
	}
	cp := *req
	return &cp, nil
}

func (r *inMemoryRequestRepo) ListForUser(ctx context.Context, userID string, incoming bool) ([]domain.MoneyRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.MoneyRequest
	for _, req := range r.requests {
		if incoming && req.PayerID == userID {
			out = append(out, *req)
		}
		if !incoming && req.RequesterID == userID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *inMemoryRequestRepo) resolve(id string, declined bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return apperror.ErrNotFound("Money request")
	}
	if req.IsResolved {
		return apperror.ErrRequestResolved()
	}
	req.IsResolved = true
	req.Declined = declined
	req.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryRequestRepo) MarkResolved(ctx context.Context, id string) error {
	return r.resolve(id, false)
}

func (r *inMemoryRequestRepo) MarkDeclined(ctx context.Context, id string) error {
	return r.resolve(id, true)
}

// --- In-Memory Intent Repo ---

type inMemoryIntentRepo struct {
	mu      sync.RWMutex
	intents map[string]*domain.TransferIntent
}

func newInMemoryIntentRepo() *inMemoryIntentRepo {
	return &inMemoryIntentRepo{intents: make(map[string]*domain.TransferIntent)}
}

func (r *inMemoryIntentRepo) Create(ctx context.Context, intent *domain.TransferIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *intent
	r.intents[intent.ID] = &cp
	return nil
}

func (r *inMemoryIntentRepo) UpdateStatus(ctx context.Context, id string, status domain.IntentStatus, nodeTxID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	intent, ok := r.intents[id]
	if !ok {
		return apperror.ErrNotFound("Transfer intent")
	}
	intent.Status = status
	if nodeTxID != "" {
		intent.NodeTxID = nodeTxID
	}
	intent.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryIntentRepo) ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.TransferIntent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.TransferIntent
	for _, intent := range r.intents {
		if intent.Status == domain.IntentStatusPending && intent.CreatedAt.Before(olderThan) {
			out = append(out, *intent)
		}
	}
	return out, nil
}

func (r *inMemoryIntentRepo) statuses() map[domain.IntentStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.IntentStatus]int)
	for _, intent := range r.intents {
		out[intent.Status]++
	}
	return out
}

// --- Fake Node Client ---

// fakeNode simulates a regtest Bitcoin Core node: named wallets with
// balances, freshly derived bech32 addresses, and atomic sends.
type fakeNode struct {
	mu        sync.Mutex
	wallets   map[string]btcutil.Amount // name -> balance
	loaded    map[string]bool
	addresses map[string]string // address -> wallet name
	addrSeq   uint32
	txSeq     int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		wallets:   make(map[string]btcutil.Amount),
		loaded:    make(map[string]bool),
		addresses: make(map[string]string),
	}
}

// fund credits a wallet directly, like mining to it on regtest.
func (n *fakeNode) fund(wallet string, amount btcutil.Amount) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.wallets[wallet]; !ok {
		n.wallets[wallet] = 0
	}
	n.wallets[wallet] += amount
}

func (n *fakeNode) ListWallets(ctx context.Context) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for name := range n.loaded {
		out = append(out, name)
	}
	return out, nil
}

func (n *fakeNode) LoadWallet(ctx context.Context, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.wallets[name]; !ok {
		return fmt.Errorf("loading wallet %s: %w", name, ports.ErrWalletMissing)
	}
	n.loaded[name] = true
	return nil
}

func (n *fakeNode) CreateWallet(ctx context.Context, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.wallets[name]; !ok {
		n.wallets[name] = 0
	}
	n.loaded[name] = true
	return nil
}

func (n *fakeNode) UnloadWallet(ctx context.Context, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.loaded, name)
	return nil
}

func (n *fakeNode) GetNewAddress(ctx context.Context, wallet string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.wallets[wallet]; !ok {
		return "", fmt.Errorf("wallet %s: %w", wallet, ports.ErrWalletMissing)
	}
	n.addrSeq++
	var keyHash [20]byte
	binary.BigEndian.PutUint32(keyHash[:4], n.addrSeq)
	addr, err := btcutil.NewAddressWitnessPubKeyHash(keyHash[:], &chaincfg.RegressionNetParams)
	if err != nil {
		return "", err
	}
	encoded := addr.EncodeAddress()
	n.addresses[encoded] = wallet
	return encoded, nil
}

func (n *fakeNode) GetBalance(ctx context.Context, wallet string) (btcutil.Amount, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.wallets[wallet], nil
}

func (n *fakeNode) SendToAddress(ctx context.Context, wallet, address string, amount btcutil.Amount) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.loaded[wallet] {
		return "", apperror.ErrNodeUnavailable(fmt.Errorf("wallet %s not loaded", wallet))
	}
	if n.wallets[wallet] < amount {
		return "", apperror.ErrTransferRejected("Insufficient funds")
	}
	n.wallets[wallet] -= amount
	if dest, ok := n.addresses[address]; ok {
		n.wallets[dest] += amount
	}
	n.txSeq++
	return fmt.Sprintf("node-tx-%d", n.txSeq), nil
}

func (n *fakeNode) Ping(ctx context.Context) error {
	return nil
}
