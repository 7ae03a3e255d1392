package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/openfable/openfable/pkg/database"
	"github.com/openfable/openfable/pkg/database/models"
	"gorm.io/gorm"
)

func main() {
	fmt.Println("=== PostgreSQL Database Connectivity Check ===")

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	fmt.Printf("📡 Connecting to database...\n")

	db, err := database.NewGormDBFromConfig(databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		fmt.Printf("❌ Failed to get underlying database connection: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	fmt.Println("✅ Database connection established")

	fmt.Printf("🏓 Testing database ping...\n")
	if err := sqlDB.Ping(); err != nil {
		fmt.Printf("❌ Database ping failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Database ping successful")

	fmt.Printf("🔍 Checking PostgreSQL version...\n")
	var version string
	if err := db.Raw("SELECT version()").Scan(&version).Error; err != nil {
		fmt.Printf("❌ Failed to get database version: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ PostgreSQL version: %s\n", version)

	fmt.Printf("📊 Checking connection pool stats...\n")
	stats := sqlDB.Stats()
	fmt.Printf("   - Open connections: %d\n", stats.OpenConnections)
	fmt.Printf("   - In use: %d\n", stats.InUse)
	fmt.Printf("   - Idle: %d\n", stats.Idle)

	fmt.Printf("🗃️  Checking existing tables...\n")
	if err := checkExistingTables(db); err != nil {
		fmt.Printf("⚠️  Table check warning: %v\n", err)
	}

	fmt.Printf("🔄 Testing transaction capability...\n")
	if err := testTransactionCapability(db); err != nil {
		fmt.Printf("❌ Transaction test failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Transaction capability verified")

	fmt.Printf("⚡ Running performance test...\n")
	start := time.Now()
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		fmt.Printf("❌ Performance test failed: %v\n", err)
		os.Exit(1)
	}
	duration := time.Since(start)

	fmt.Printf("✅ Simple query completed in %v\n", duration)

	if duration > 5*time.Second {
		fmt.Println("⚠️  Query took longer than 5 seconds - check network latency")
	}

	fmt.Println("\n=== Database Connectivity Check Complete ===")
	fmt.Println("✅ PostgreSQL database is accessible and ready for use")
}

// checkExistingTables checks if the expected tables exist and are accessible
func checkExistingTables(db *gorm.DB) error {
	expectedTables := []string{
		"registries",
		"characters",
	}

	var existingTables []string
	if err := db.Raw(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_type = 'BASE TABLE'
	`).Scan(&existingTables).Error; err != nil {
		return fmt.Errorf("failed to query existing tables: %w", err)
	}

	fmt.Printf("   Found %d existing tables\n", len(existingTables))

	tableMap := make(map[string]bool)
	for _, table := range existingTables {
		tableMap[table] = true
	}

	missingTables := []string{}
	for _, expected := range expectedTables {
		if !tableMap[expected] {
			missingTables = append(missingTables, expected)
		}
	}

	if len(missingTables) > 0 {
		fmt.Printf("   ⚠️  Missing tables (will be created during migration): %v\n", missingTables)
		return nil
	}

	fmt.Println("   ✅ All expected tables exist")

	var registryCount int64
	if err := db.Model(&models.Registry{}).Count(&registryCount).Error; err != nil {
		return fmt.Errorf("failed to count registries: %w", err)
	}
	var characterCount int64
	if err := db.Model(&models.Character{}).Count(&characterCount).Error; err != nil {
		return fmt.Errorf("failed to count characters: %w", err)
	}
	fmt.Printf("   📊 %d registries, %d characters\n", registryCount, characterCount)

	return nil
}

// testTransactionCapability tests if the database supports transactions properly
func testTransactionCapability(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Exec("CREATE TEMPORARY TABLE test_transaction (id SERIAL PRIMARY KEY, test_data TEXT)").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create temporary table: %w", err)
	}

	if err := tx.Exec("INSERT INTO test_transaction (test_data) VALUES ('test')").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert test data: %w", err)
	}

	var count int64
	if err := tx.Raw("SELECT COUNT(*) FROM test_transaction").Scan(&count).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to count test data: %w", err)
	}

	if count != 1 {
		tx.Rollback()
		return fmt.Errorf("unexpected count in transaction: expected 1, got %d", count)
	}

	if err := tx.Rollback().Error; err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}
