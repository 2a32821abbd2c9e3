package auth

import (
	"testing"
	"time"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"
	"Backend-Feedback-Portal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginUnknownEmailStillComparesHash(t *testing.T) {
	store := test.NewMemoryUserStore()
	jwtm := utils.NewJWTManager("a", "r", time.Minute, time.Hour)
	svc := NewService(store, jwtm, nil, nil, nil)

	var hashes [][]byte
	svc.compare = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err := svc.Login(test.Ctx(t), LoginInput{Email: "ghost@uni.test", Password: "secret123"})
	assert.Equal(t, 401, utils.StatusOf(err))
	require.Len(t, hashes, 1)
	assert.Equal(t, dummyHash, hashes[0])

	cost, err := bcrypt.Cost(dummyHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	stored := test.Staff(models.RoleTeacher)
	h, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored.Password = string(h)
	store.Add(stored)

	_, err = svc.Login(test.Ctx(t), LoginInput{Email: stored.Email, Password: "wrong-pass"})
	assert.Equal(t, 401, utils.StatusOf(err))
	require.Len(t, hashes, 2)
	assert.Equal(t, []byte(stored.Password), hashes[1])
}
