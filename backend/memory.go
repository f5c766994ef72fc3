package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"clementus360/taskboard/memstore"
	"clementus360/taskboard/session"
	"clementus360/taskboard/types"

	"golang.org/x/crypto/bcrypt"
)

type memoryAccount struct {
	user     types.User
	password []byte
	store    *memstore.Store
}

// Memory keeps accounts and their tasks in process. A login for an unknown
// username creates the account, so a fresh server can be tried without
// registering first.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount
	nextID   int64
}

func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]*memoryAccount)}
}

// AddUser creates an account with the given tasks already in it.
func (b *Memory) AddUser(username, password string, tasks ...types.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, err := b.create(types.User{Username: username}, password)
	if err != nil {
		return err
	}
	acct.store.Seed(tasks...)
	return nil
}

func (b *Memory) Login(ctx context.Context, req types.LoginRequest) (Account, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return Account{}, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[strings.ToLower(username)]
	if !ok {
		var err error
		if acct, err = b.create(types.User{Username: username}, req.Password); err != nil {
			return Account{}, err
		}
	} else if bcrypt.CompareHashAndPassword(acct.password, []byte(req.Password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return Account{Service: acct.store, Session: session.NewClaims(acct.user, "")}, nil
}

func (b *Memory) Register(ctx context.Context, req types.RegisterRequest) (Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[email]; exists {
		return Account{}, fmt.Errorf("%w: %s is already registered", ErrInvalidCredentials, email)
	}
	acct, err := b.create(types.User{
		Username:  email,
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, req.Password)
	if err != nil {
		return Account{}, err
	}
	return Account{Service: acct.store, Session: session.NewClaims(acct.user, "")}, nil
}

// create must be called with b.mu held.
func (b *Memory) create(user types.User, password string) (*memoryAccount, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	b.nextID++
	user.ID = b.nextID
	acct := &memoryAccount{user: user, password: hash, store: memstore.New()}
	b.accounts[strings.ToLower(user.Username)] = acct
	return acct, nil
}
