package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"papyrus/internal/config"
	"papyrus/internal/db"
	"papyrus/internal/model"
	"papyrus/internal/repository"
)

// seedPassword is the password for every demo account.
const seedPassword = "password123"

type seedUser struct {
	Name  string
	Email string
	Phone string
}

type seedListing struct {
	SellerEmail string
	Title       string
	Author      string
	ISBN        string
	Price       string
	Condition   model.Condition
	Category    string
}

var seedUsers = []seedUser{
	{Name: "Alice Chen", Email: "alice@example.com", Phone: "555-0101"},
	{Name: "Bob Marsh", Email: "bob@example.com", Phone: "555-0102"},
	{Name: "Carol Ito", Email: "carol@example.com"},
}

var seedListings = []seedListing{
	{SellerEmail: "alice@example.com", Title: "Introduction to Algorithms", Author: "Cormen et al.", ISBN: "9780262046305", Price: "45.00", Condition: model.ConditionUsed, Category: "Computer Science"},
	{SellerEmail: "alice@example.com", Title: "Linear Algebra Done Right", Author: "Sheldon Axler", ISBN: "9783319110790", Price: "30.00", Condition: model.ConditionLikeNew, Category: "Math"},
	{SellerEmail: "bob@example.com", Title: "Organic Chemistry", Author: "Paula Bruice", ISBN: "9780134042282", Price: "55.50", Condition: model.ConditionVeryUsed, Category: "Science"},
	{SellerEmail: "bob@example.com", Title: "Principles of Economics", Author: "N. Gregory Mankiw", ISBN: "9780357038314", Price: "40.00", Condition: model.ConditionNew, Category: "Business"},
	{SellerEmail: "carol@example.com", Title: "The Norton Anthology of English Literature", Price: "25.00", Condition: model.ConditionUsed, Category: "Literature"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Textbook{}, &model.PasswordResetToken{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	textbookRepo := repository.NewTextbookRepository(gormDB)
	ctx := context.Background()

	users, err := seedDemoUsers(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	created, skipped, err := seedDemoListings(ctx, textbookRepo, users)
	if err != nil {
		log.Fatalf("Failed to seed listings: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users present: %d", len(users))
	log.Printf("  - Listings created: %d (skipped %d already present)", created, skipped)
	log.Printf("All demo accounts use the password %q", seedPassword)
}

// seedDemoUsers creates the demo accounts (pre-verified so they can log
// in immediately) or reuses existing ones.
func seedDemoUsers(ctx context.Context, repo repository.UserRepository) (map[string]*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seedPassword), 10)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make(map[string]*model.User, len(seedUsers))
	for _, item := range seedUsers {
		existing, err := repo.FindByEmail(ctx, item.Email)
		if err == nil {
			users[item.Email] = existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("check user %s: %w", item.Email, err)
		}

		user := &model.User{
			Name:         item.Name,
			Email:        item.Email,
			PasswordHash: string(hashedPassword),
			Phone:        item.Phone,
			Balance:      model.InitialBalance,
			Verified:     true,
		}
		if err := repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", item.Email, err)
		}
		users[item.Email] = user
		log.Printf("Created user %s", item.Email)
	}
	return users, nil
}

// seedDemoListings creates the demo listings, skipping titles a seller
// already lists so the script is re-runnable.
func seedDemoListings(ctx context.Context, repo repository.TextbookRepository, users map[string]*model.User) (created, skipped int, err error) {
	for _, item := range seedListings {
		seller, ok := users[item.SellerEmail]
		if !ok {
			return created, skipped, fmt.Errorf("no seeded seller for %s", item.SellerEmail)
		}

		existing, err := repo.FindBySeller(ctx, seller.ID)
		if err != nil {
			return created, skipped, fmt.Errorf("list seller %s: %w", item.SellerEmail, err)
		}
		if hasTitle(existing, item.Title) {
			skipped++
			continue
		}

		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return created, skipped, fmt.Errorf("invalid price for %q: %w", item.Title, err)
		}

		textbook := &model.Textbook{
			Title:     item.Title,
			Author:    item.Author,
			ISBN:      item.ISBN,
			Price:     price,
			Condition: item.Condition,
			Category:  item.Category,
			SellerID:  seller.ID,
			CreatedAt: time.Now(),
		}
		if err := repo.Create(ctx, textbook); err != nil {
			return created, skipped, fmt.Errorf("create listing %q: %w", item.Title, err)
		}
		created++
		log.Printf("Created listing %q for %s", item.Title, item.SellerEmail)
	}
	return created, skipped, nil
}

func hasTitle(listings []model.Textbook, title string) bool {
	for _, l := range listings {
		if l.Title == title {
			return true
		}
	}
	return false
}
