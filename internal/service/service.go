package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/fintrackhq/fintrack/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence surface the service depends on. It is satisfied
// by *repository.Repository; tests substitute mocks.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)

	CreateAccount(ctx context.Context, account *models.Account) error
	ListAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	FindAccountOwner(ctx context.Context, accountID int64) (int64, error)

	CreateImportJob(ctx context.Context, userID int64, sourceName string) (string, error)
	SetImportJobStatus(ctx context.Context, jobID, status, failureReason string) error
	FindImportJob(ctx context.Context, userID int64, jobID string) (*models.ImportJob, error)
	InsertTransactionChunk(ctx context.Context, userID int64, jobID string, records []models.Transaction, skipDuplicates bool) error
	ListTransactions(ctx context.Context, userID int64, filter repository.TransactionFilter) ([]models.Transaction, error)

	CreateHolding(ctx context.Context, holding *models.Holding) error
	ListHoldings(ctx context.Context, userID int64) ([]models.Holding, error)
	ListHeldSymbols(ctx context.Context) ([]string, error)
}

// Resolver resolves a symbol set to quotes
type Resolver interface {
	Resolve(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error)
}

// Notifier sends import outcome notifications. May be nil when
// notifications are not configured.
type Notifier interface {
	SendImportNotification(to, username, sourceName string, imported int, jobErr error) error
}

// Service handles business logic
type Service struct {
	store    Store
	resolver Resolver
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service
func NewService(store Store, resolver Resolver, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, resolver: resolver, notifier: notifier, log: log, config: cfg}
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// CreateAccount creates a new account for the authenticated user
func (s *Service) CreateAccount(ctx context.Context, name, accountType, currency string) (*models.Account, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:   userID,
		Name:     name,
		Type:     accountType,
		Currency: currency,
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.Infof("Account created for user %d: %s", userID, account.Name)
	return account, nil
}

// ListAccounts returns the authenticated user's accounts
func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListAccounts(ctx, userID)
}

// ListTransactions returns the authenticated user's transactions, optionally
// narrowed by account, date range and amount range
func (s *Service) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, userID, filter)
}

// GetImportJob returns one of the authenticated user's import jobs, so a
// caller can poll a submitted import for its terminal status and failure
// reason. Jobs of other users are indistinguishable from absent ones.
func (s *Service) GetImportJob(ctx context.Context, jobID string) (*models.ImportJob, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.FindImportJob(ctx, userID, jobID)
}

// CreateHolding creates a holding for the authenticated user
func (s *Service) CreateHolding(ctx context.Context, accountID int64, symbol string, quantity decimal.Decimal) (*models.Holding, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	owner, err := s.store.FindAccountOwner(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, ErrForeignAccount
	}

	holding := &models.Holding{
		UserID:    userID,
		AccountID: accountID,
		Symbol:    symbol,
		Quantity:  quantity,
	}
	if err := s.store.CreateHolding(ctx, holding); err != nil {
		return nil, err
	}
	return holding, nil
}

// ListHoldings returns the authenticated user's holdings
func (s *Service) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListHoldings(ctx, userID)
}

// ResolvePrices resolves quotes for the given symbols on behalf of the
// authenticated user. The underlying cache is shared: one user's fetch
// benefits every later caller asking for the same symbol.
func (s *Service) ResolvePrices(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error) {
	if _, err := userFromContext(ctx); err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, symbols)
}

// RefreshHeldQuotes re-resolves every symbol currently held by any user.
// Run from the scheduler; with a staleness threshold configured this keeps
// the shared cache warm in the background.
func (s *Service) RefreshHeldQuotes(ctx context.Context) error {
	symbols, err := s.store.ListHeldSymbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return nil
	}
	quotes, err := s.resolver.Resolve(ctx, symbols)
	if err != nil {
		return err
	}
	s.log.Infof("Refreshed quotes for %d of %d held symbols", len(quotes), len(symbols))
	return nil
}

// userFromContext extracts the authenticated user id set by the auth
// middleware. Operations invoked without it fail before any work is done.
func userFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}
