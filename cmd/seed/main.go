package main

import (
	"log"
	"os"

	"loan-origination-be/internal/entity"
	"loan-origination-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

// Seeds the CRM tables with sample customers and pre-negotiated offers for
// local development. Re-running is safe: existing rows are left untouched.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	customers := []entity.Customer{
		{
			ID:               "CUST001",
			Name:             "Rahul Sharma",
			City:             "Mumbai",
			Phone:            "9876543210",
			Email:            "rahul.sharma@example.com",
			CreditScore:      750,
			PreapprovedLimit: 500000,
			Salary:           85000,
		},
		{
			ID:               "CUST002",
			Name:             "Priya Patel",
			City:             "Ahmedabad",
			Phone:            "9123456780",
			Email:            "priya.patel@example.com",
			CreditScore:      680,
			PreapprovedLimit: 300000,
			Salary:           60000,
		},
		{
			ID:               "CUST003",
			Name:             "Amit Verma",
			City:             "Delhi",
			Phone:            "9988776655",
			Email:            "amit.verma@example.com",
			CreditScore:      810,
			PreapprovedLimit: 1200000,
			Salary:           150000,
		},
		{
			ID:               "CUST004",
			Name:             "Sneha Iyer",
			City:             "Bengaluru",
			Phone:            "9090909090",
			Email:            "sneha.iyer@example.com",
			CreditScore:      720,
			PreapprovedLimit: 400000,
			Salary:           40000,
		},
	}

	offers := []entity.Offer{
		{CustomerID: "CUST001", InterestRate: 9.25},
		{CustomerID: "CUST003", InterestRate: 8.75},
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&customers).Error; err != nil {
		log.Fatalf("Error: Failed to seed customers: %v", err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&offers).Error; err != nil {
		log.Fatalf("Error: Failed to seed offers: %v", err)
	}

	log.Printf("✅ Success: Seeded %d customers and %d offers.", len(customers), len(offers))
}
