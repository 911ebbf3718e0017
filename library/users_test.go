package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerUser(t *testing.T, s *UserStore, email string) Account {
	t.Helper()
	acct, err := s.Register(context.Background(), RegisterInput{
		Email: email, Password: "pw123", FirstName: "Ann", LastName: "Lee", Role: RoleUser,
	})
	require.NoError(t, err)
	return acct
}

func TestRegisterThenLogin(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	ctx := context.Background()

	acct := registerUser(t, s, "a@x.com")
	assert.Equal(t, DefaultUserBorrowLimit, acct.BorrowLimit)
	assert.Equal(t, epoch, acct.CreatedAt)

	session, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, session.ID)
	assert.Equal(t, 6, session.BorrowLimit)
	assert.Equal(t, 0, session.BorrowedBooks)
	assert.Equal(t, "Ann Lee", session.FullName())
	assert.True(t, s.IsLoggedIn())
	assert.False(t, s.IsAdmin())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	ctx := context.Background()
	registerUser(t, s, "a@x.com")

	_, err := s.Register(ctx, RegisterInput{Email: "a@x.com", Password: "other", Role: RoleUser})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeDuplicateEmail))
	assert.Equal(t, Result{Success: false, Message: "Email already exists"}, ResultOf(err, "Registration successful"))

	users, err := s.ListUserAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegisterEmailIsCaseSensitive(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	registerUser(t, s, "a@x.com")
	registerUser(t, s, "A@X.com")

	users, err := s.ListUserAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRegisterAdminGetsZeroLimit(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	acct, err := s.Register(context.Background(), RegisterInput{Email: "boss@x.com", Password: "pw", Role: RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 0, acct.BorrowLimit)
}

func TestRegisterSeesOtherInstances(t *testing.T) {
	kv := tempDB(t)
	clock := &fixedClock{now: epoch}
	first := newUsers(t, kv, clock)
	second := newUsers(t, kv, clock, WithIDGen(&seqIDs{prefix: "v"}))

	registerUser(t, first, "a@x.com")
	_, err := second.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "pw", Role: RoleUser})
	assert.True(t, IsCode(err, ErrCodeDuplicateEmail))

	registerUser(t, second, "b@x.com")
	users, err := first.ListUserAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	registerUser(t, s, "a@x.com")

	for _, tc := range []struct{ email, password string }{
		{"a@x.com", "wrong"},
		{"nobody@x.com", "pw123"},
		{"A@x.com", "pw123"},
	} {
		_, err := s.Login(context.Background(), tc.email, tc.password)
		assert.True(t, IsCode(err, ErrCodeInvalidCredentials), "%s/%s", tc.email, tc.password)
	}
	assert.Nil(t, s.CurrentSession())
}

func TestSeededAdminLogin(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})

	session, err := s.Login(context.Background(), SeedAdminEmail, SeedAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, "1", session.ID)
	assert.Equal(t, RoleAdmin, session.Role)
	assert.Equal(t, 0, session.BorrowLimit)
	assert.True(t, s.IsAdmin())

	// Admins are not listed among user accounts.
	users, err := s.ListUserAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestWithoutSeedNoAdmin(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch}, WithSeed(false))
	_, err := s.Login(context.Background(), SeedAdminEmail, SeedAdminPassword)
	assert.True(t, IsCode(err, ErrCodeInvalidCredentials))
}

func TestLoginCountsActiveBorrows(t *testing.T) {
	kv := tempDB(t)
	clock := &fixedClock{now: epoch}
	s := newUsers(t, kv, clock)
	catalog := newCatalog(t, kv, clock)
	ctx := context.Background()

	acct := registerUser(t, s, "a@x.com")
	_, err := catalog.BorrowBook(ctx, "1", acct.ID, "Ann Lee", acct.Email)
	require.NoError(t, err)
	tx, err := catalog.BorrowBook(ctx, "2", acct.ID, "Ann Lee", acct.Email)
	require.NoError(t, err)
	_, err = catalog.ReturnBook(ctx, tx.ID)
	require.NoError(t, err)

	session, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, 1, session.BorrowedBooks)
}

func TestSessionSurvivesRestart(t *testing.T) {
	kv := tempDB(t)
	clock := &fixedClock{now: epoch}
	s := newUsers(t, kv, clock)
	registerUser(t, s, "a@x.com")
	session, err := s.Login(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)

	restarted := newUsers(t, kv, clock)
	cur := restarted.CurrentSession()
	require.NotNil(t, cur)
	assert.Equal(t, session, *cur)
}

func TestLogoutClearsPersistedSession(t *testing.T) {
	kv := tempDB(t)
	clock := &fixedClock{now: epoch}
	s := newUsers(t, kv, clock)
	ctx := context.Background()
	registerUser(t, s, "a@x.com")
	_, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsLoggedIn())
	_, ok, err := kv.Get(ctx, KeyCurrentUser)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Nil(t, newUsers(t, kv, clock).CurrentSession())
	// Logging out twice is harmless.
	require.NoError(t, s.Logout(ctx))
}

func TestCurrentSessionIsACopy(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	_, err := s.Login(context.Background(), SeedAdminEmail, SeedAdminPassword)
	require.NoError(t, err)

	cur := s.CurrentSession()
	cur.FirstName = "Mallory"
	assert.Equal(t, "Admin", s.CurrentSession().FirstName)
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	_, err := s.UpdateProfile(context.Background(), ProfileUpdate{FirstName: ptr("X")})
	assert.True(t, IsCode(err, ErrCodeNoActiveSession))
	assert.Equal(t, "No user logged in", ResultOf(err, "").Message)
}

func TestUpdateProfileMergesAccountAndSession(t *testing.T) {
	kv := tempDB(t)
	clock := &fixedClock{now: epoch}
	s := newUsers(t, kv, clock)
	ctx := context.Background()
	acct := registerUser(t, s, "a@x.com")
	_, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	session, err := s.UpdateProfile(ctx, ProfileUpdate{LastName: ptr("Smith"), BorrowLimit: ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, "Ann", session.FirstName)
	assert.Equal(t, "Smith", session.LastName)
	assert.Equal(t, 9, session.BorrowLimit)

	restarted := newUsers(t, kv, clock)
	stored, err := restarted.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smith", stored.LastName)
	assert.Equal(t, 9, stored.BorrowLimit)
	assert.Equal(t, "pw123", stored.Password)
	assert.Equal(t, "Smith", restarted.CurrentSession().LastName)
}

func TestUpdateProfileAccountRemoved(t *testing.T) {
	kv := tempDB(t)
	s := newUsers(t, kv, &fixedClock{now: epoch})
	ctx := context.Background()
	registerUser(t, s, "a@x.com")
	_, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, kv.Set(ctx, KeyUsers, []byte(`[]`)))
	_, err = s.UpdateProfile(ctx, ProfileUpdate{FirstName: ptr("X")})
	assert.True(t, IsCode(err, ErrCodeAccountNotFound))
	assert.Equal(t, "Ann", s.CurrentSession().FirstName)
}

func TestSearchUserAccounts(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	ctx := context.Background()
	registerUser(t, s, "ann@x.com")
	_, err := s.Register(ctx, RegisterInput{Email: "bob@y.org", FirstName: "Bob", LastName: "Marsh", Role: RoleUser})
	require.NoError(t, err)

	cases := map[string]int{"": 2, "  ": 2, "MARSH": 1, "y.org": 1, "lee": 1, "zzz": 0, "admin": 0}
	for term, want := range cases {
		got, err := s.SearchUserAccounts(ctx, term)
		require.NoError(t, err)
		assert.Len(t, got, want, "term %q", term)
	}
}

func TestGetAccountUnknown(t *testing.T) {
	s := newUsers(t, tempDB(t), &fixedClock{now: epoch})
	_, err := s.GetAccount(context.Background(), "missing")
	assert.True(t, IsCode(err, ErrCodeAccountNotFound))
}

func TestRegisterWriteFailureChangesNothing(t *testing.T) {
	kv := &flakyKV{KVStore: tempDB(t)}
	s := newUsers(t, kv, &fixedClock{now: epoch})
	ctx := context.Background()

	kv.failWrites = true
	_, err := s.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw", Role: RoleUser})
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, IsCode(err, ErrCodeDuplicateEmail))

	kv.failWrites = false
	users, err := s.ListUserAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	registerUser(t, s, "a@x.com")
}
