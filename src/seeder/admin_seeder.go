package seeder

import (
	"context"
	"log"
	"strings"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// AdminStore คือส่วนของ users.Store ที่ seeder ใช้
type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
}

// SeedAdmin สร้าง admin คนแรกถ้ายังไม่มี email นี้ในระบบ
// (admin สมัครเองผ่าน /auth/register ไม่ได้)
func SeedAdmin(ctx context.Context, store AdminStore, fullName, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, utils.NewValidationError("admin email and password are required")
	}

	existing, err := store.FindByEmail(ctx, email)
	if err == nil {
		log.Printf("ℹ️ Admin %s already exists, skipping seed", email)
		return existing, nil
	}
	if !errors.Is(err, DB.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash admin password")
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = "Administrator"
	}
	username := strings.SplitN(email, "@", 2)[0]

	admin, err := models.NewStaff(fullName, username, email, string(hash), models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := store.Insert(ctx, admin); err != nil {
		return nil, errors.Wrap(err, "insert admin")
	}
	log.Printf("✅ Seeded admin: %s (ID: %s)", admin.Email, admin.ID.Hex())
	return admin, nil
}
