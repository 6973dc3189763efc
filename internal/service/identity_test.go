package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/repository"
    "github.com/iliyamo/trip-seat-reservation/internal/storage"
)

func TestIdentitySeedsAndHashes(t *testing.T) {
    f := newFixture(t)
    users := f.identity.Users()
    require.Len(t, users, 3)
    for _, u := range users {
        assert.NotEqual(t, SeedPassword, u.PasswordHash)
        assert.True(t, len(u.PasswordHash) > 20)
    }
    admin, ok := f.identity.GetByID("user-admin-001")
    require.True(t, ok)
    assert.True(t, admin.IsAdmin())

    // a second Initialize, and a fresh service on the same store, never reseed
    require.NoError(t, f.identity.Initialize(context.Background()))
    g := newFixtureOn(t, f.store)
    assert.Len(t, g.identity.Users(), 3)
}

func TestRegisterAndDuplicateEmail(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    u, err := f.identity.Register(ctx, RegisterInput{Name: "Ayşe", Email: "  Ayse@Example.com ", Password: "secret"})
    require.NoError(t, err)
    assert.Equal(t, "ayse@example.com", u.Email)
    assert.Equal(t, model.RoleUser, u.Role)
    cur, ok := f.identity.CurrentUser()
    require.True(t, ok)
    assert.Equal(t, u.ID, cur.ID)

    for _, email := range []string{"ayse@example.com", "AYSE@EXAMPLE.COM", "USER@test.com"} {
        _, err := f.identity.Register(ctx, RegisterInput{Name: "X", Email: email, Password: "pw"})
        assert.ErrorIs(t, err, ErrDuplicateEmail, email)
    }
    assert.Len(t, f.identity.Users(), 4)

    stored, _, err := repository.NewUserRepo(f.store, f.keys).LoadAll(ctx)
    require.NoError(t, err)
    assert.Len(t, stored, 4)
}

func TestRegisterValidation(t *testing.T) {
    f := newFixture(t)
    cases := []RegisterInput{
        {Email: "a@b.com", Password: "x"},
        {Name: "A", Password: "x"},
        {Name: "A", Email: "not-an-email", Password: "x"},
        {Name: "A", Email: "a@b.com"},
    }
    for _, in := range cases {
        _, err := f.identity.Register(context.Background(), in)
        assert.ErrorIs(t, err, ErrValidation)
    }
}

func TestRegisterSaveFailureLeavesStateUnchanged(t *testing.T) {
    f := newFixture(t)
    f.store.failWrites(f.keys.Users, true)
    _, err := f.identity.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.com", Password: "x"})
    require.ErrorIs(t, err, storage.ErrIO)
    assert.Len(t, f.identity.Users(), 3)
    _, ok := f.identity.CurrentUser()
    assert.False(t, ok)
}

func TestLogin(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    _, err := f.identity.Login(ctx, "user@test.com", "wrong")
    assert.ErrorIs(t, err, ErrInvalidCredentials)
    _, ok := f.identity.CurrentUser()
    assert.False(t, ok)

    _, err = f.identity.Login(ctx, "nobody@test.com", SeedPassword)
    assert.ErrorIs(t, err, ErrInvalidCredentials)

    u, err := f.identity.Login(ctx, "User@Test.com", SeedPassword)
    require.NoError(t, err)
    assert.Equal(t, "user-test-001", u.ID)
    assert.False(t, f.identity.IsAdmin())

    // the session survives a restart
    g := newFixtureOn(t, f.store)
    cur, ok := g.identity.CurrentUser()
    require.True(t, ok)
    assert.Equal(t, "user-test-001", cur.ID)

    require.NoError(t, f.identity.Logout(ctx))
    _, ok = f.identity.CurrentUser()
    assert.False(t, ok)
    sess, err := repository.NewUserRepo(f.store, f.keys).LoadSession(ctx)
    require.NoError(t, err)
    assert.Nil(t, sess)
}

func TestUpdateProfile(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    _, err := f.identity.Login(ctx, "admin@test.com", SeedPassword)
    require.NoError(t, err)

    name, phone, pw := "Yönetici", "0500 000 0000", "new-pass"
    u, err := f.identity.UpdateProfile(ctx, "user-admin-001", ProfileUpdate{Name: &name, Phone: &phone, Password: &pw})
    require.NoError(t, err)
    assert.Equal(t, name, u.Name)
    assert.Equal(t, model.RoleAdmin, u.Role)

    cur, _ := f.identity.CurrentUser()
    assert.Equal(t, name, cur.Name)
    assert.True(t, f.identity.IsAdmin())

    _, err = f.identity.Login(ctx, "admin@test.com", SeedPassword)
    assert.ErrorIs(t, err, ErrInvalidCredentials)
    _, err = f.identity.Login(ctx, "admin@test.com", pw)
    assert.NoError(t, err)

    taken := "USER@test.com"
    _, err = f.identity.UpdateProfile(ctx, "user-admin-001", ProfileUpdate{Email: &taken})
    assert.ErrorIs(t, err, ErrDuplicateEmail)

    _, err = f.identity.UpdateProfile(ctx, "ghost", ProfileUpdate{Name: &name})
    assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginUpgradesHashCost(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    id := NewIdentity(repository.NewUserRepo(f.store, f.keys), IdentityOptions{BcryptCost: bcrypt.MinCost + 1})
    require.NoError(t, id.Initialize(ctx))

    got, err := id.Login(ctx, "mehmet@test.com", SeedPassword)
    require.NoError(t, err)
    u, ok := id.GetByID("user-test-002")
    require.True(t, ok)
    cost, err := bcrypt.Cost([]byte(u.PasswordHash))
    require.NoError(t, err)
    assert.Equal(t, bcrypt.MinCost+1, cost)
    assert.Equal(t, u.PasswordHash, got.PasswordHash)

    // the session carries the upgraded hash, in memory and in the store
    cur, ok := id.CurrentUser()
    require.True(t, ok)
    assert.Equal(t, u.PasswordHash, cur.PasswordHash)
    sess, err := repository.NewUserRepo(f.store, f.keys).LoadSession(ctx)
    require.NoError(t, err)
    require.NotNil(t, sess)
    assert.Equal(t, u.PasswordHash, sess.PasswordHash)

    _, err = id.Login(ctx, "mehmet@test.com", SeedPassword)
    assert.NoError(t, err)
}
