// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package marketplace is the coordinator for the Adinci zone/campaign
// ledger. It owns the user directory, the zone list, the rental lifecycle
// and the chat store, and mirrors every state change into the snapshot
// store. All transitions are synchronous and run to completion; callers
// dispatch one event at a time.
package marketplace

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/analytics"
	"github.com/adxyz/adinci/pkg/chat"
	"github.com/adxyz/adinci/pkg/collect"
	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/ledger"
	"github.com/adxyz/adinci/pkg/log"
	"github.com/adxyz/adinci/pkg/metric"
	"github.com/adxyz/adinci/pkg/rental"
	"github.com/adxyz/adinci/pkg/storage"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("an account with this email already exists")
	ErrEmailRequired = errors.New("email is required")
	ErrNameRequired  = errors.New("name is required")
	ErrWrongRole     = errors.New("operation not available for this account type")
)

// AdvertiserStartingBalance is the signup bonus advertisers receive so they
// can run a first campaign in the demo marketplace.
var AdvertiserStartingBalance = decimal.NewFromInt(500)

// Config wires the coordinator's collaborators. Store, Metrics and Analytics
// are optional; Logger defaults to the no-op logger; Clock defaults to
// time.Now.
type Config struct {
	Store     *storage.Storage
	Metrics   *metric.Metrics
	Analytics *analytics.Tracker
	Logger    log.Logger
	Clock     func() time.Time
}

// Marketplace is the application-state coordinator
type Marketplace struct {
	mu sync.Mutex

	users     map[string]*core.User
	userOrder []string
	zones     map[string]*core.AdZone
	zoneOrder []string

	rentals   *rental.Manager
	wallets   *ledger.Ledger
	collector *collect.Engine
	chats     *chat.Store

	// One watch session per user; starting a new watch replaces it
	watches map[string]*collect.WatchSession

	currentUserID string

	store   *storage.Storage
	metrics *metric.Metrics
	stats   *analytics.Tracker
	clock   func() time.Time
	log     log.Logger
}

// New creates a marketplace coordinator and restores any persisted snapshot
func New(cfg Config) (*Marketplace, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoOp()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	wallets := ledger.New(logger)

	m := &Marketplace{
		users:     make(map[string]*core.User),
		zones:     make(map[string]*core.AdZone),
		rentals:   rental.NewManager(wallets, logger),
		wallets:   wallets,
		collector: collect.NewEngine(logger),
		chats:     chat.NewStore(),
		watches:   make(map[string]*collect.WatchSession),
		store:     cfg.Store,
		metrics:   cfg.Metrics,
		stats:     cfg.Analytics,
		clock:     clock,
		log:       logger,
	}

	if err := m.restore(); err != nil {
		return nil, err
	}

	return m, nil
}

// restore loads the four snapshot records plus chats. Missing records mean
// a fresh marketplace.
func (m *Marketplace) restore() error {
	if m.store == nil {
		return nil
	}

	users, err := m.store.LoadUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		m.users[u.ID] = u
		m.userOrder = append(m.userOrder, u.ID)
	}

	zones, err := m.store.LoadZones()
	if err != nil {
		return err
	}
	for _, z := range zones {
		m.zones[z.ID] = z
		m.zoneOrder = append(m.zoneOrder, z.ID)
	}

	reqs, err := m.store.LoadRequests()
	if err != nil {
		return err
	}
	m.rentals.Restore(reqs)

	sessions, err := m.store.LoadChats()
	if err != nil {
		return err
	}
	m.chats.Restore(sessions)

	current, err := m.store.LoadCurrentUser()
	if err != nil {
		return err
	}
	if _, ok := m.users[current]; ok {
		m.currentUserID = current
	}

	return nil
}

// persist mirrors the in-memory state to the snapshot store. Persistence
// failures are logged, not fatal: the in-memory state stays authoritative.
func (m *Marketplace) persist() {
	if m.store == nil {
		return
	}

	if err := m.store.SaveUsers(m.usersLocked()); err != nil {
		m.log.Error("persist users", zap.Error(err))
	}
	if err := m.store.SaveZones(m.zonesLocked()); err != nil {
		m.log.Error("persist zones", zap.Error(err))
	}
	if err := m.store.SaveRequests(m.rentals.List()); err != nil {
		m.log.Error("persist requests", zap.Error(err))
	}
	if err := m.store.SaveChats(m.chats.All()); err != nil {
		m.log.Error("persist chats", zap.Error(err))
	}

	if m.currentUserID == "" {
		if err := m.store.ClearCurrentUser(); err != nil {
			m.log.Error("persist current user", zap.Error(err))
		}
	} else if err := m.store.SaveCurrentUser(m.currentUserID); err != nil {
		m.log.Error("persist current user", zap.Error(err))
	}
}

func (m *Marketplace) usersLocked() []*core.User {
	out := make([]*core.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		out = append(out, m.users[id])
	}
	return out
}

func (m *Marketplace) zonesLocked() []*core.AdZone {
	out := make([]*core.AdZone, 0, len(m.zoneOrder))
	for _, id := range m.zoneOrder {
		out = append(out, m.zones[id])
	}
	return out
}

// SignUpParams collects the signup form fields
type SignUpParams struct {
	Name               string
	Email              string
	PhoneNumber        string
	Type               core.UserType
	Bio                string
	IsVisuallyImpaired bool
}

// SignUp creates a marketplace account. Advertisers start with a demo
// balance; owners start with zeroed earnings and escrow.
func (m *Marketplace) SignUp(p SignUpParams) (*core.User, error) {
	if p.Email == "" {
		return nil, ErrEmailRequired
	}
	if p.Name == "" {
		return nil, ErrNameRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == p.Email && u.Type == p.Type {
			return nil, ErrEmailTaken
		}
	}

	u := &core.User{
		ID:          uuid.NewString(),
		Name:        p.Name,
		Type:        p.Type,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Bio:         p.Bio,
		Settings:    core.UserSettings{IsVisuallyImpaired: p.IsVisuallyImpaired},
		Balance:     decimal.Zero,
	}
	if p.Type == core.UserAdvertiser {
		u.Balance = AdvertiserStartingBalance
	}

	m.users[u.ID] = u
	m.userOrder = append(m.userOrder, u.ID)
	m.currentUserID = u.ID
	m.persist()

	m.log.Info("account created",
		zap.String("user", u.ID),
		zap.String("type", string(u.Type)))

	return u, nil
}

// Login swaps the current-user view to an existing account. There is no
// credential check; authentication is out of scope.
func (m *Marketplace) Login(email string, role core.UserType) (*core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.userOrder {
		u := m.users[id]
		if u.Email == email && u.Type == role {
			m.currentUserID = u.ID
			m.persist()
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

// Logout clears the current-user view
func (m *Marketplace) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentUserID = ""
	m.persist()
}

// CurrentUser returns the logged-in user, nil when logged out
func (m *Marketplace) CurrentUser() *core.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[m.currentUserID]
}

// User returns a user by id
func (m *Marketplace) User(id string) (*core.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}

// Users returns the full directory in registration order
func (m *Marketplace) Users() []*core.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usersLocked()
}

// AddFunds tops up a user's spendable balance (simulated payment always
// succeeds upstream; by the time it reaches the ledger it is a plain credit)
func (m *Marketplace) AddFunds(userID string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if err := m.wallets.AddFunds(u, amount); err != nil {
		return err
	}

	m.persist()
	return nil
}

// WithdrawOwnerBalance pays a zone owner's entire spendable balance out to
// an external target
func (m *Marketplace) WithdrawOwnerBalance(userID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return decimal.Zero, ErrUserNotFound
	}
	if u.Type != core.UserZoneOwner {
		return decimal.Zero, ErrWrongRole
	}

	amount, err := m.wallets.WithdrawBalance(u)
	if err != nil {
		return decimal.Zero, err
	}

	m.persist()
	return amount, nil
}

// WithdrawPoints converts a regular user's points to ADT tokens sent to the
// given wallet address
func (m *Marketplace) WithdrawPoints(userID, address string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return decimal.Zero, ErrUserNotFound
	}

	tokens, err := m.wallets.WithdrawPointsToTokens(u, address)
	if err != nil {
		return decimal.Zero, err
	}

	m.persist()
	return tokens, nil
}

// SendMessage appends a chat message between two users. Messaging never
// touches the ledger.
func (m *Marketplace) SendMessage(senderID, recipientID, text string) (*chat.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[senderID]; !ok {
		return nil, ErrUserNotFound
	}
	if _, ok := m.users[recipientID]; !ok {
		return nil, ErrUserNotFound
	}

	sess, err := m.chats.Send(senderID, recipientID, text, m.clock())
	if err != nil {
		return nil, err
	}

	m.persist()
	return sess, nil
}

// ChatsFor returns a user's conversations, most recent first
func (m *Marketplace) ChatsFor(userID string) []*chat.Session {
	return m.chats.SessionsFor(userID)
}
