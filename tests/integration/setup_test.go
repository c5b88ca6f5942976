//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/roomstay/booking-service/internal/models"
	"github.com/roomstay/booking-service/pkg/payment"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "booking_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	dropTables()

	if err := testDB.AutoMigrate(
		&models.Room{},
		&models.User{},
		&models.Booking{},
		&models.Dispute{},
		&models.Transaction{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_dispute_open
		ON disputes (booking_id)
		WHERE status = 'PENDING'
	`)

	code := m.Run()

	dropTables()

	os.Exit(code)
}

func dropTables() {
	testDB.Exec("DROP TABLE IF EXISTS transactions")
	testDB.Exec("DROP TABLE IF EXISTS disputes")
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	testDB.Exec("DROP TABLE IF EXISTS users")
	testDB.Exec("DROP TABLE IF EXISTS rooms")
}

func cleanTables() {
	testDB.Exec("DELETE FROM transactions")
	testDB.Exec("DELETE FROM disputes")
	testDB.Exec("DELETE FROM bookings")
	testDB.Exec("DELETE FROM users")
	testDB.Exec("DELETE FROM rooms")
	testDB.Exec("ALTER SEQUENCE IF EXISTS bookings_id_seq RESTART WITH 1")
	testDB.Exec("ALTER SEQUENCE IF EXISTS disputes_id_seq RESTART WITH 1")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- Recording payment gateway ---

// recordingGateway stands in for the payment collaborator; it records every
// instruction and can be told to fail.
type recordingGateway struct {
	mu          sync.Mutex
	captures    []payment.Instruction
	refunds     []payment.Instruction
	failCapture bool
	failRefund  bool
}

var errGatewayDown = errors.New("gateway unavailable")

func (g *recordingGateway) Capture(ctx context.Context, instr payment.Instruction) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCapture {
		return "", errGatewayDown
	}
	g.captures = append(g.captures, instr)
	return fmt.Sprintf("cap-%s", instr.ID), nil
}

func (g *recordingGateway) Refund(ctx context.Context, instr payment.Instruction) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failRefund {
		return "", errGatewayDown
	}
	g.refunds = append(g.refunds, instr)
	return fmt.Sprintf("ref-%s", instr.ID), nil
}

func (g *recordingGateway) captureCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.captures)
}

func (g *recordingGateway) refundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.refunds)
}

// --- Recording notifier ---

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(routingKey string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, routingKey)
	return nil
}

func (n *recordingNotifier) has(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}
