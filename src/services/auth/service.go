package auth

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"strings"
	"time"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/services/ocr"
	"Backend-Feedback-Portal/src/services/uploads"
	"Backend-Feedback-Portal/src/services/users"
	"Backend-Feedback-Portal/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

// dummyHash is compared when the email is unknown so both failure paths cost one bcrypt check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-user-password"), bcrypt.DefaultCost)

type Uploader interface {
	SaveIDCard(fh *multipart.FileHeader) (*uploads.StoredImage, error)
	Remove(img *uploads.StoredImage)
}

// CardReader reads text off a stored ID card.
type CardReader interface {
	Extract(ctx context.Context, filename string, image []byte) (*ocr.Result, error)
}

type Service struct {
	store     users.Store
	jwt       *utils.JWTManager
	blacklist utils.TokenBlacklist
	uploader  Uploader
	ocr       CardReader
	now       func() time.Time
	compare   func(hash, password []byte) error
}

func NewService(store users.Store, jwtm *utils.JWTManager, blacklist utils.TokenBlacklist, uploader Uploader, reader CardReader) *Service {
	return &Service{
		store:     store,
		jwt:       jwtm,
		blacklist: blacklist,
		uploader:  uploader,
		ocr:       reader,
		now:       time.Now,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

type RegisterInput struct {
	FullName       string `form:"fullName" json:"fullName" validate:"required"`
	Username       string `form:"username" json:"username" validate:"required,min=3"`
	Email          string `form:"email" json:"email" validate:"required,email"`
	Password       string `form:"password" json:"password" validate:"required,min=6"`
	Role           string `form:"role" json:"role"`
	Course         string `form:"course" json:"course"`
	Year           int    `form:"year" json:"year"`
	Semester       int    `form:"semester" json:"semester"`
	Section        string `form:"section" json:"section"`
	Specialization string `form:"specialization" json:"specialization"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Result is a signed-in user with a freshly issued token pair.
type Result struct {
	User   *models.User     `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

// Register สมัครสมาชิก: ต้องแนบบัตร, OCR อาจเปลี่ยน role ที่ขอมา
func (s *Service) Register(ctx context.Context, in RegisterInput, idCard *multipart.FileHeader) (*models.User, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleTeacher {
		return nil, utils.NewValidationError("Self-registration is only allowed for students and teachers")
	}
	if idCard == nil {
		return nil, utils.NewValidationError("ID card image is required")
	}

	exists, err := s.store.ExistsByEmailOrUsername(ctx, in.Email, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.NewConflictError("User with this email or username already exists")
	}

	img, err := s.uploader.SaveIDCard(idCard)
	if err != nil {
		return nil, err
	}

	role = s.roleFromCard(ctx, img, role)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.uploader.Remove(img)
		return nil, utils.NewInternalError("Failed to hash password")
	}

	u, err := buildUser(in, role, string(hash))
	if err != nil {
		s.uploader.Remove(img)
		return nil, err
	}
	u.IDCardPath = img.Path

	if err := s.store.Insert(ctx, u); err != nil {
		s.uploader.Remove(img)
		if errors.Is(err, DB.ErrDuplicateKey) {
			return nil, utils.NewConflictError("User with this email or username already exists")
		}
		return nil, err
	}
	log.Printf("✅ Registered %s as %s", u.Email, u.Role)
	return u, nil
}

// roleFromCard: OCR ล้มเหลวไม่ทำให้สมัครไม่ได้ ใช้ role ที่ขอมาแทน
func (s *Service) roleFromCard(ctx context.Context, img *uploads.StoredImage, requested string) string {
	if s.ocr == nil {
		return requested
	}
	res, err := s.ocr.Extract(ctx, img.Name, img.Data)
	if err != nil {
		log.Printf("⚠️ OCR failed for %s: %v", img.Name, err)
		return requested
	}
	inferred := res.InferRole()
	if inferred == "" || inferred == requested {
		return requested
	}
	log.Printf("⚠️ ID card says %s, overriding requested role %s", inferred, requested)
	return inferred
}

func buildUser(in RegisterInput, role, hash string) (*models.User, error) {
	var (
		u   *models.User
		err error
	)
	if role == models.RoleStudent {
		u, err = models.NewStudent(in.FullName, in.Username, in.Email, hash, models.AcademicProfile{
			Course:         in.Course,
			Year:           in.Year,
			Semester:       in.Semester,
			Section:        in.Section,
			Specialization: in.Specialization,
		})
	} else {
		u, err = models.NewStaff(in.FullName, in.Username, in.Email, hash, role)
	}
	if err != nil {
		return nil, utils.NewValidationError("%s", err.Error())
	}
	return u, nil
}

// Login returns the same error for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	u, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, DB.ErrNotFound) {
			_ = s.compare(dummyHash, []byte(in.Password))
			return nil, utils.NewUnauthorizedError(invalidCredentials)
		}
		return nil, err
	}
	if s.compare([]byte(u.Password), []byte(in.Password)) != nil {
		return nil, utils.NewUnauthorizedError(invalidCredentials)
	}

	return s.issue(ctx, u)
}

// Refresh rotates the pair; the presented token must be the one stored at last issue.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	if refreshToken == "" {
		return nil, utils.NewUnauthorizedError("Refresh token is required")
	}
	claims, err := s.jwt.ParseRefresh(refreshToken)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid or expired refresh token")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid or expired refresh token")
	}

	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, DB.ErrNotFound) {
			return nil, utils.NewUnauthorizedError("Invalid or expired refresh token")
		}
		return nil, err
	}
	if u.RefreshToken == "" || u.RefreshToken != refreshToken {
		// token เก่าถูกใช้ซ้ำ: ยกเลิก session ทั้งหมดของผู้ใช้
		if u.RefreshToken != "" {
			if err := s.store.SetRefreshToken(ctx, u.ID, ""); err != nil {
				log.Printf("⚠️ revoke refresh token for %s: %v", u.ID.Hex(), err)
			}
		}
		return nil, utils.NewUnauthorizedError("Refresh token has been revoked")
	}

	return s.issue(ctx, u)
}

func (s *Service) issue(ctx context.Context, u *models.User) (*Result, error) {
	pair, err := s.jwt.GeneratePair(u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		return nil, utils.NewInternalError("Failed to generate tokens")
	}
	if err := s.store.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, err
	}
	u.RefreshToken = pair.RefreshToken
	return &Result{User: u, Tokens: pair}, nil
}

// Logout clears the stored refresh token and blacklists the access token until it expires.
func (s *Service) Logout(ctx context.Context, userID primitive.ObjectID, accessToken string, claims *utils.JWTClaims) error {
	if err := s.store.SetRefreshToken(ctx, userID, ""); err != nil && !errors.Is(err, DB.ErrNotFound) {
		return err
	}
	if accessToken == "" || claims == nil {
		return nil
	}
	if err := s.blacklist.Blacklist(ctx, accessToken, claims.RemainingTTL(s.now())); err != nil {
		log.Printf("❌ blacklist access token: %v", err)
		return utils.NewInternalError("Failed to revoke access token")
	}
	log.Printf("👋 Logged out %s", userID.Hex())
	return nil
}
