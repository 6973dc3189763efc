// Package service holds the reservation core: the Identity directory of
// users and the active session, the trip Catalog with its seat inventory,
// and the booking Ledger that keeps reservations and seat occupancy in
// step.  Each service guards its own state with a mutex and persists whole
// collections through the repository layer.
package service

import (
    "context"
    "log/slog"
    "net/mail"
    "slices"
    "strings"
    "sync"
    "time"

    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/repository"
    "github.com/iliyamo/trip-seat-reservation/internal/utils"
)

// IdentityOptions tunes an Identity service.  Zero values pick defaults.
type IdentityOptions struct {
    BcryptCost int
    Logger     *slog.Logger
    Now        func() time.Time
}

// Identity owns the registered users and the single active session.
type Identity struct {
    mu      sync.Mutex
    repo    *repository.UserRepo
    users   []model.User
    current *model.User
    ready   bool

    cost      int
    logger    *slog.Logger
    now       func() time.Time
    dummyHash string
}

// RegisterInput carries the fields of a new account.  Phone is optional.
type RegisterInput struct {
    Name     string
    Email    string
    Password string
    Phone    string
}

// ProfileUpdate is a partial profile change; nil fields are untouched.
type ProfileUpdate struct {
    Name     *string
    Email    *string
    Phone    *string
    Password *string
}

func NewIdentity(repo *repository.UserRepo, opts IdentityOptions) *Identity {
    if opts.BcryptCost <= 0 {
        opts.BcryptCost = 12
    }
    return &Identity{
        repo:   repo,
        cost:   opts.BcryptCost,
        logger: loggerOrDiscard(opts.Logger),
        now:    clockOrUTC(opts.Now),
    }
}

// Initialize loads users and the session, seeding the default accounts
// when no users were ever stored.  A second call is a no-op.
func (s *Identity) Initialize(ctx context.Context) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.ready {
        return nil
    }

    dummy, err := utils.HashPassword("not-a-real-password", s.cost)
    if err != nil {
        return err
    }
    s.dummyHash = dummy

    users, ok, err := s.repo.LoadAll(ctx)
    if err != nil {
        s.logger.Warn("identity: load users failed, using defaults", "error", err)
        ok = false
    }
    if !ok || len(users) == 0 {
        seeded, err := s.seed()
        if err != nil {
            return err
        }
        if err := s.repo.SaveAll(ctx, seeded); err != nil {
            return err
        }
        users = seeded
        s.logger.Info("identity: seeded default users", "count", len(users))
    }
    s.users = users

    sess, err := s.repo.LoadSession(ctx)
    if err != nil {
        s.logger.Warn("identity: load session failed, starting signed out", "error", err)
        sess = nil
    }
    if sess != nil {
        // the stored session may be stale; resolve against the user list
        if i := s.indexByID(sess.ID); i >= 0 {
            u := s.users[i]
            s.current = &u
        }
    }
    s.ready = true
    return nil
}

func (s *Identity) seed() ([]model.User, error) {
    users := seedUsers()
    for i := range users {
        h, err := utils.HashPassword(SeedPassword, s.cost)
        if err != nil {
            return nil, err
        }
        users[i].PasswordHash = h
    }
    return users, nil
}

// Register creates a user with role user, persists the user list and makes
// the new user the active session.
func (s *Identity) Register(ctx context.Context, in RegisterInput) (model.User, error) {
    name := strings.TrimSpace(in.Name)
    email := normalizeEmail(in.Email)
    if name == "" {
        return model.User{}, invalid("name", "required")
    }
    if err := validateEmail(email); err != nil {
        return model.User{}, err
    }
    if in.Password == "" {
        return model.User{}, invalid("password", "required")
    }

    s.mu.Lock()
    defer s.mu.Unlock()

    if s.indexByEmail(email) >= 0 {
        return model.User{}, ErrDuplicateEmail
    }
    hash, err := utils.HashPassword(in.Password, s.cost)
    if err != nil {
        return model.User{}, err
    }
    u := model.User{
        ID:           utils.NewID("user"),
        Email:        email,
        PasswordHash: hash,
        Name:         name,
        Role:         model.RoleUser,
        Phone:        strings.TrimSpace(in.Phone),
        CreatedAt:    s.now(),
    }

    prev := s.users
    next := append(slices.Clone(prev), u)
    if err := s.repo.SaveAll(ctx, next); err != nil {
        return model.User{}, err
    }
    if err := s.repo.SaveSession(ctx, &u); err != nil {
        if rbErr := s.repo.SaveAll(ctx, prev); rbErr != nil {
            s.logger.Error("identity: restore user list failed", "error", rbErr)
        }
        return model.User{}, err
    }
    s.users = next
    s.current = &u
    s.logger.Info("identity: user registered", "user_id", u.ID)
    return u, nil
}

// Login checks the credentials and makes the user the active session.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Identity) Login(ctx context.Context, email, password string) (model.User, error) {
    email = normalizeEmail(email)

    s.mu.Lock()
    defer s.mu.Unlock()

    i := s.indexByEmail(email)
    if i < 0 {
        utils.VerifyPassword(s.dummyHash, password)
        return model.User{}, ErrInvalidCredentials
    }
    if !utils.VerifyPassword(s.users[i].PasswordHash, password) {
        return model.User{}, ErrInvalidCredentials
    }
    if utils.NeedsRehash(s.users[i].PasswordHash, s.cost) {
        s.rehash(ctx, i, password)
    }
    u := s.users[i]
    if err := s.repo.SaveSession(ctx, &u); err != nil {
        return model.User{}, err
    }
    s.current = &u
    return u, nil
}

// rehash upgrades the stored hash of user i to the configured cost.  It is
// best effort: failure leaves the old, still valid hash in place.
func (s *Identity) rehash(ctx context.Context, i int, password string) {
    h, err := utils.HashPassword(password, s.cost)
    if err != nil {
        return
    }
    next := slices.Clone(s.users)
    next[i].PasswordHash = h
    if err := s.repo.SaveAll(ctx, next); err != nil {
        s.logger.Warn("identity: password rehash not saved", "user_id", next[i].ID, "error", err)
        return
    }
    s.users = next
}

// Logout clears the active session.
func (s *Identity) Logout(ctx context.Context) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if err := s.repo.SaveSession(ctx, nil); err != nil {
        return err
    }
    s.current = nil
    return nil
}

// UpdateProfile merges upd into the user.  Role, id and creation time are
// never changed.  When the user is the active session the session is
// rewritten as well.
func (s *Identity) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    i := s.indexByID(userID)
    if i < 0 {
        return model.User{}, ErrUserNotFound
    }
    u := s.users[i]
    if upd.Name != nil {
        name := strings.TrimSpace(*upd.Name)
        if name == "" {
            return model.User{}, invalid("name", "must not be empty")
        }
        u.Name = name
    }
    if upd.Phone != nil {
        u.Phone = strings.TrimSpace(*upd.Phone)
    }
    if upd.Email != nil {
        email := normalizeEmail(*upd.Email)
        if err := validateEmail(email); err != nil {
            return model.User{}, err
        }
        if j := s.indexByEmail(email); j >= 0 && j != i {
            return model.User{}, ErrDuplicateEmail
        }
        u.Email = email
    }
    if upd.Password != nil {
        if *upd.Password == "" {
            return model.User{}, invalid("password", "must not be empty")
        }
        h, err := utils.HashPassword(*upd.Password, s.cost)
        if err != nil {
            return model.User{}, err
        }
        u.PasswordHash = h
    }

    next := slices.Clone(s.users)
    next[i] = u
    if err := s.repo.SaveAll(ctx, next); err != nil {
        return model.User{}, err
    }
    isCurrent := s.current != nil && s.current.ID == u.ID
    if isCurrent {
        if err := s.repo.SaveSession(ctx, &u); err != nil {
            if rbErr := s.repo.SaveAll(ctx, s.users); rbErr != nil {
                s.logger.Error("identity: restore user list failed", "error", rbErr)
            }
            return model.User{}, err
        }
        s.current = &u
    }
    s.users = next
    return u, nil
}

// CurrentUser returns the active session user.
func (s *Identity) CurrentUser() (model.User, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.current == nil {
        return model.User{}, false
    }
    return *s.current, true
}

// IsAdmin reports whether the active session belongs to an admin.
func (s *Identity) IsAdmin() bool {
    u, ok := s.CurrentUser()
    return ok && u.IsAdmin()
}

func (s *Identity) GetByID(id string) (model.User, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if i := s.indexByID(id); i >= 0 {
        return s.users[i], true
    }
    return model.User{}, false
}

// Users returns a snapshot of every registered user.
func (s *Identity) Users() []model.User {
    s.mu.Lock()
    defer s.mu.Unlock()
    return slices.Clone(s.users)
}

// Reset drops in-memory state so the next Initialize reloads (and reseeds)
// from the store.
func (s *Identity) Reset() {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.users, s.current, s.ready = nil, nil, false
}

func (s *Identity) indexByEmail(email string) int {
    return slices.IndexFunc(s.users, func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Identity) indexByID(id string) int {
    return slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == id })
}

func normalizeEmail(e string) string {
    return strings.ToLower(strings.TrimSpace(e))
}

func validateEmail(email string) error {
    if email == "" {
        return invalid("email", "required")
    }
    if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
        return invalid("email", "malformed address")
    }
    return nil
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
    if l == nil {
        return slog.New(slog.DiscardHandler)
    }
    return l
}

func clockOrUTC(now func() time.Time) func() time.Time {
    if now != nil {
        return now
    }
    return func() time.Time { return time.Now().UTC() }
}
