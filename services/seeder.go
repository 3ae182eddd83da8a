package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gigbridge/backend/models"
	"github.com/gigbridge/backend/repository"
	"golang.org/x/crypto/bcrypt"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	store repository.Store
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(store repository.Store) *DatabaseSeeder {
	return &DatabaseSeeder{store: store}
}

// SeedDatabase seeds the database with initial demo data (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	// Check if seeding has already been completed
	if s.isSeedingComplete(ctx) {
		slog.Info("Database seeding already completed, skipping")
		return nil
	}

	// Hash default password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Create demo users (one per role)
	users := []models.User{
		{
			Email:    "associate@example.com",
			Password: string(hashedPassword),
			FullName: "Ava Associate",
			Role:     models.RoleAssociate,
		},
		{
			Email:    "freelancer@example.com",
			Password: string(hashedPassword),
			FullName: "Felix Freelancer",
			Role:     models.RoleFreelancer,
		},
	}

	// Seed users (idempotent)
	for _, user := range users {
		if err := s.seedUser(ctx, user); err != nil {
			slog.Error("Failed to seed user", "email", user.Email, "error", err)
		}
	}

	associate, err := s.store.GetUserByEmail(ctx, "associate@example.com")
	if err != nil {
		return fmt.Errorf("failed to get demo associate: %w", err)
	}
	if associate == nil {
		return fmt.Errorf("demo associate not found")
	}

	freelancer, err := s.store.GetUserByEmail(ctx, "freelancer@example.com")
	if err != nil {
		return fmt.Errorf("failed to get demo freelancer: %w", err)
	}
	if freelancer == nil {
		return fmt.Errorf("demo freelancer not found")
	}

	// Create a demo request with the freelancer already recommended, so the
	// hire and interview flows can be exercised right after seeding
	request := models.FreelanceRequest{
		AssociateID: associate.ID,
		Title:       "Payments Dashboard Revamp",
		Description: "Rebuild the internal payments dashboard with a modern frontend stack and real-time settlement views.",
		Status:      models.RequestStatusOpen,
	}

	if err := s.seedRequest(ctx, &request, freelancer.ID); err != nil {
		slog.Error("Failed to seed demo request", "title", request.Title, "error", err)
	}

	slog.Info("Database seeding completed successfully")
	return nil
}

// isSeedingComplete checks if seeding has already been completed
func (s *DatabaseSeeder) isSeedingComplete(ctx context.Context) bool {
	// The demo associate is the last thing seeding depends on; if it exists,
	// seeding has already run
	user, err := s.store.GetUserByEmail(ctx, "associate@example.com")
	if err != nil {
		return false
	}
	return user != nil
}

// seedUser seeds a single user (idempotent)
func (s *DatabaseSeeder) seedUser(ctx context.Context, user models.User) error {
	existingUser, err := s.store.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("error checking user %s: %w", user.Email, err)
	}

	if existingUser != nil {
		slog.Info("User already exists, skipping", "email", user.Email)
		return nil
	}

	if err := s.store.CreateUser(ctx, &user); err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	slog.Info("Created user", "email", user.Email, "role", user.Role)
	return nil
}

// seedRequest seeds a request together with a recommendation for the given
// freelancer (idempotent)
func (s *DatabaseSeeder) seedRequest(ctx context.Context, request *models.FreelanceRequest, freelancerID string) error {
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return fmt.Errorf("failed to create request %s: %w", request.Title, err)
	}

	recommendation := models.Recommendation{
		RequestID:    request.ID,
		FreelancerID: freelancerID,
	}
	if err := s.store.CreateRecommendation(ctx, &recommendation); err != nil {
		return fmt.Errorf("failed to create recommendation for request %s: %w", request.ID, err)
	}

	slog.Info("Created demo request", "title", request.Title, "request_id", request.ID)
	return nil
}
