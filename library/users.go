package library

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// UserStore owns the registered accounts and the active session, mirrored
// to the "users" and "currentUser" keys.
type UserStore struct {
	mu    sync.Mutex
	kv    KVStore
	log   zerolog.Logger
	clock Clock
	ids   IDGen

	users   []Account
	session *Session
}

// RegisterInput carries the fields a new account is created from.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      Role
}

// ProfileUpdate lists the profile fields to merge; nil fields are left alone.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Role        *Role
	BorrowLimit *int
}

// NewUserStore hydrates the account list and any persisted session from kv.
func NewUserStore(ctx context.Context, kv KVStore, opts ...Option) (*UserStore, error) {
	o := buildOptions(opts)
	s := &UserStore{
		kv:    kv,
		log:   o.logger.With().Str("store", "users").Logger(),
		clock: o.clock,
		ids:   o.ids,
	}
	if o.seed {
		s.users = seedAccounts(o.clock.Now())
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	var session Session
	found, err := loadJSON(ctx, kv, KeyCurrentUser, &session)
	if err != nil {
		return nil, err
	}
	if found {
		s.session = &session
		s.log.Debug().Str("user_id", session.ID).Msg("session restored")
	}
	return s, nil
}

// refresh re-reads the account list. An absent key keeps what is in memory.
func (s *UserStore) refresh(ctx context.Context) error {
	var users []Account
	found, err := loadJSON(ctx, s.kv, KeyUsers, &users)
	if err != nil {
		return err
	}
	if found {
		s.users = users
	}
	return nil
}

func (s *UserStore) Register(ctx context.Context, in RegisterInput) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return Account{}, err
	}

	// Exact, case-sensitive comparison.
	if slices.ContainsFunc(s.users, func(a Account) bool { return a.Email == in.Email }) {
		s.log.Info().Str("email", in.Email).Msg("register rejected: duplicate email")
		return Account{}, ErrDuplicateEmail()
	}

	id, err := s.ids.New()
	if err != nil {
		return Account{}, err
	}
	acct := Account{
		ID:          id,
		Email:       in.Email,
		Password:    in.Password,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Role:        in.Role,
		BorrowLimit: DefaultBorrowLimit(in.Role),
		CreatedAt:   s.clock.Now(),
	}

	users := append(slices.Clone(s.users), acct)
	if err := saveJSON(ctx, s.kv, KeyUsers, users); err != nil {
		return Account{}, err
	}
	s.users = users

	s.log.Debug().Str("user_id", acct.ID).Str("role", string(acct.Role)).Msg("account registered")
	return acct, nil
}

// Login authenticates against the persisted accounts and starts a session.
func (s *UserStore) Login(ctx context.Context, email, password string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return Session{}, err
	}

	i := slices.IndexFunc(s.users, func(a Account) bool {
		return a.Email == email && a.Password == password
	})
	if i < 0 {
		s.log.Info().Str("email", email).Msg("login rejected")
		return Session{}, ErrInvalidCredentials()
	}
	acct := s.users[i]

	borrowed, err := s.countBorrowed(ctx, acct.ID)
	if err != nil {
		return Session{}, err
	}

	session := Session{
		ID:            acct.ID,
		Email:         acct.Email,
		FirstName:     acct.FirstName,
		LastName:      acct.LastName,
		Role:          acct.Role,
		BorrowLimit:   acct.BorrowLimit,
		BorrowedBooks: borrowed,
	}
	if err := saveJSON(ctx, s.kv, KeyCurrentUser, session); err != nil {
		return Session{}, err
	}
	s.session = &session

	s.log.Debug().Str("user_id", acct.ID).Msg("logged in")
	return session, nil
}

// countBorrowed counts the user's active transactions straight from storage;
// the user store does not depend on the catalog store.
func (s *UserStore) countBorrowed(ctx context.Context, userID string) (int, error) {
	var txs []BorrowTransaction
	if _, err := loadJSON(ctx, s.kv, KeyTransactions, &txs); err != nil {
		return 0, err
	}
	n := 0
	for _, t := range txs {
		if t.UserID == userID && t.Status == StatusBorrowed {
			n++
		}
	}
	return n, nil
}

func (s *UserStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, KeyCurrentUser); err != nil {
		return err
	}
	if s.session != nil {
		s.log.Debug().Str("user_id", s.session.ID).Msg("logged out")
	}
	s.session = nil
	return nil
}

// CurrentSession returns a copy of the active session, or nil.
func (s *UserStore) CurrentSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

func (s *UserStore) IsLoggedIn() bool { return s.CurrentSession() != nil }

func (s *UserStore) IsAdmin() bool {
	cur := s.CurrentSession()
	return cur != nil && cur.Role == RoleAdmin
}

// UpdateProfile merges the set fields into both the logged-in account and
// the session and persists the two.
func (s *UserStore) UpdateProfile(ctx context.Context, upd ProfileUpdate) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return Session{}, ErrNoActiveSession()
	}
	if err := s.refresh(ctx); err != nil {
		return Session{}, err
	}

	i := slices.IndexFunc(s.users, func(a Account) bool { return a.ID == s.session.ID })
	if i < 0 {
		s.log.Info().Str("user_id", s.session.ID).Msg("profile update: account missing")
		return Session{}, ErrAccountNotFound()
	}

	users := slices.Clone(s.users)
	acct := &users[i]
	session := *s.session
	if upd.FirstName != nil {
		acct.FirstName, session.FirstName = *upd.FirstName, *upd.FirstName
	}
	if upd.LastName != nil {
		acct.LastName, session.LastName = *upd.LastName, *upd.LastName
	}
	if upd.Email != nil {
		acct.Email, session.Email = *upd.Email, *upd.Email
	}
	if upd.Role != nil {
		acct.Role, session.Role = *upd.Role, *upd.Role
	}
	if upd.BorrowLimit != nil {
		acct.BorrowLimit, session.BorrowLimit = *upd.BorrowLimit, *upd.BorrowLimit
	}

	if err := saveJSON(ctx, s.kv, KeyUsers, users, KeyCurrentUser, session); err != nil {
		return Session{}, err
	}
	s.users = users
	s.session = &session

	s.log.Debug().Str("user_id", session.ID).Msg("profile updated")
	return session, nil
}

// ListUserAccounts returns every account with role user; admins are left out.
func (s *UserStore) ListUserAccounts(ctx context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	var out []Account
	for _, a := range s.users {
		if a.Role == RoleUser {
			out = append(out, a)
		}
	}
	return out, nil
}

// SearchUserAccounts filters ListUserAccounts by a case-insensitive term over
// first name, last name and email. An empty term matches everyone.
func (s *UserStore) SearchUserAccounts(ctx context.Context, term string) ([]Account, error) {
	users, err := s.ListUserAccounts(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users, nil
	}
	var out []Account
	for _, a := range users {
		if containsFold(a.FirstName, term) || containsFold(a.LastName, term) || containsFold(a.Email, term) {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetAccount looks an account up by id after re-reading storage.
func (s *UserStore) GetAccount(ctx context.Context, id string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return Account{}, err
	}
	i := slices.IndexFunc(s.users, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return Account{}, ErrAccountNotFound()
	}
	return s.users[i], nil
}

// containsFold reports whether lowerTerm occurs in s, ignoring case.
// lowerTerm must already be lower-cased.
func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
