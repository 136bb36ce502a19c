package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidCondition(t *testing.T) {
	assert.True(t, ValidCondition(ConditionNew))
	assert.True(t, ValidCondition(ConditionLikeNew))
	assert.True(t, ValidCondition(ConditionUsed))
	assert.True(t, ValidCondition(ConditionVeryUsed))
	assert.False(t, ValidCondition("pristine"))
	assert.False(t, ValidCondition(""))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("Math"))
	assert.True(t, ValidCategory("Uncategorized"))
	assert.False(t, ValidCategory("Astrology"))
	assert.False(t, ValidCategory("math"))
}

func TestTextbook_Sold(t *testing.T) {
	textbook := Textbook{}
	assert.False(t, textbook.Sold())

	buyerID := uuid.New()
	textbook.BuyerID = &buyerID
	assert.True(t, textbook.Sold())
}

func TestPasswordResetToken_Expired(t *testing.T) {
	now := time.Now()
	token := PasswordResetToken{CreatedAt: now.Add(-29 * time.Minute)}
	assert.False(t, token.Expired(now))

	token.CreatedAt = now.Add(-31 * time.Minute)
	assert.True(t, token.Expired(now))
}

func TestUser_JSONHidesCredentials(t *testing.T) {
	verificationToken := "verification-token"
	expires := time.Now()
	user := User{
		ID:                  uuid.New(),
		Name:                "Test User",
		Email:               "test@example.com",
		PasswordHash:        "secret-hash",
		VerificationToken:   &verificationToken,
		VerificationExpires: &expires,
	}

	payload, err := json.Marshal(user)
	assert.NoError(t, err)
	assert.NotContains(t, string(payload), "secret-hash")
	assert.NotContains(t, string(payload), "verification-token")
	assert.Contains(t, string(payload), "test@example.com")
}

func TestUser_Sanitized(t *testing.T) {
	user := User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        "test@example.com",
		Phone:        "555-0101",
		PasswordHash: "secret-hash",
	}

	public := user.Sanitized()
	assert.Equal(t, user.ID, public.ID)
	assert.Equal(t, user.Name, public.Name)
	assert.Equal(t, user.Email, public.Email)
	assert.Equal(t, user.Phone, public.Phone)
}
